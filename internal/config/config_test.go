package config

import "testing"

func TestApplyDefaultWeightsFillsUnsetFusion(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaultWeights()

	if cfg.Fusion != GetDefaultWeights() {
		t.Errorf("empty fusion block should get the defaults, got %+v", cfg.Fusion)
	}
}

func TestApplyDefaultWeightsKeepsExplicitZero(t *testing.T) {
	cfg := &Config{Fusion: Weights{Text: 1.0, Acoustic: 0, RemixBlend: 0.2}}
	cfg.ApplyDefaultWeights()

	if cfg.Fusion.Acoustic != 0 {
		t.Errorf("explicit acoustic 0 must survive, got %.2f", cfg.Fusion.Acoustic)
	}
	if cfg.Fusion.Text != 1.0 || cfg.Fusion.RemixBlend != 0.2 {
		t.Errorf("configured weights must not be rewritten, got %+v", cfg.Fusion)
	}
}

func TestValidateDefaultConfig(t *testing.T) {
	if err := GetDefaultConfig().Validate(); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.ConfidenceThreshold = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("out-of-range confidence threshold must be rejected")
	}
}
