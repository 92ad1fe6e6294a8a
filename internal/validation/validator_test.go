package validation

import "testing"

func TestVarZipcode(t *testing.T) {
	v := New()

	for _, zip := range []string{"02118", "90210-1234"} {
		if err := v.Var(zip, "required,zipcode"); err != nil {
			t.Errorf("zipcode %q rejected: %v", zip, err)
		}
	}
	for _, zip := range []string{"", "0211", "021181", "abcde", "02118-12"} {
		if err := v.Var(zip, "required,zipcode"); err == nil {
			t.Errorf("zipcode %q accepted", zip)
		}
	}
}

func TestCareerTag(t *testing.T) {
	v := New()

	type body struct {
		Careers []string `validate:"required,min=1,dive,career"`
	}

	if err := v.Struct(body{Careers: []string{"Web Development", "UI/UX"}}); err != nil {
		t.Fatalf("valid careers rejected: %v", err)
	}
	err := v.Struct(body{Careers: []string{"Underwater Basket Weaving"}})
	if v.ValidationErrors(err) == nil {
		t.Fatal("unknown career accepted")
	}
}
