package referenceframe

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestLimit(t *testing.T) {
	l := SymmetricLimit(-1.22)
	test.That(t, *l, test.ShouldResemble, Limit{Min: -1.22, Max: 1.22})
	test.That(t, l.Clamp(2), test.ShouldEqual, 1.22)
	test.That(t, l.Clamp(-2), test.ShouldEqual, -1.22)
	test.That(t, l.Clamp(0.3), test.ShouldEqual, 0.3)
	test.That(t, l.Contains(1.22), test.ShouldBeTrue)
	test.That(t, l.Contains(1.23), test.ShouldBeFalse)
	test.That(t, l.Validate("limit"), test.ShouldBeNil)

	var none *Limit
	test.That(t, none.Clamp(100), test.ShouldEqual, 100.0)
	test.That(t, none.Contains(math.Inf(-1)), test.ShouldBeTrue)

	err := (&Limit{Min: 1, Max: 0}).Validate("chain.joints.1.limit")
	test.That(t, err, test.ShouldBeError, `error validating "chain.joints.1.limit": min 1 is greater than max 0`)
	test.That(t, (&Limit{Min: math.NaN()}).Validate("limit"), test.ShouldNotBeNil)

	test.That(t, LimitsAlmostEqual([]Limit{*l}, []Limit{{Min: -1.220001, Max: 1.22}}), test.ShouldBeTrue)
	test.That(t, LimitsAlmostEqual([]Limit{*l}, []Limit{{Min: -1, Max: 1}}), test.ShouldBeFalse)
	test.That(t, LimitsAlmostEqual([]Limit{*l}, nil), test.ShouldBeFalse)
}
