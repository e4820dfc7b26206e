package chainparams

import "testing"

func TestDefaultRulesValidatorLimitPositive(t *testing.T) {
	r := DefaultRules()
	if r.ValidatorLimit <= 0 {
		t.Errorf("ValidatorLimit must be positive, got %d", r.ValidatorLimit)
	}
}

func TestFakeRulesShorterThanDefault(t *testing.T) {
	def := DefaultRules()
	fake := FakeRules()
	if fake.EpochDuration >= def.EpochDuration {
		t.Errorf("fake epoch duration %d should be shorter than default %d", fake.EpochDuration, def.EpochDuration)
	}
	if fake.UnbondingEpochs >= def.UnbondingEpochs {
		t.Errorf("fake unbonding epochs %d should be shorter than default %d", fake.UnbondingEpochs, def.UnbondingEpochs)
	}
}

func TestRulesCopyIndependent(t *testing.T) {
	r := DefaultRules()
	cp := r.Copy()
	cp.Name = "changed"
	if r.Name == cp.Name {
		t.Errorf("Copy should not alias the original")
	}
}
