package model

import "testing"

func TestValidateTemplateContent(t *testing.T) {
	tests := []struct {
		content string
		wantErr bool
	}{
		{"", true},
		{"Hi $name, come get your disc", true},
		{"Your disc is at $laf", true},
		{"Held until $heldUntil", true},
		{"Your $color disc is at $laf until $heldUntil", false},
		{"$laf$heldUntil", false},
	}

	for _, tt := range tests {
		err := ValidateTemplateContent(tt.content)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateTemplateContent(%q) error = %v, wantErr %v", tt.content, err, tt.wantErr)
		}
	}
}

func TestValidTemplateType(t *testing.T) {
	for _, typ := range []string{TemplateInitial, TemplateReminder, TemplateExtension} {
		if !ValidTemplateType(typ) {
			t.Errorf("expected %q to be valid", typ)
		}
	}
	for _, typ := range []string{"", "Initial", "followup"} {
		if ValidTemplateType(typ) {
			t.Errorf("expected %q to be invalid", typ)
		}
	}
}
