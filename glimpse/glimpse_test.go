package glimpse

import (
	"errors"
	"testing"
)

func TestSettingsDefaults(t *testing.T) {
	s := Settings{}.WithDefaults()

	if s.Title != "piston" {
		t.Errorf("Title = %q, want piston", s.Title)
	}

	if s.Size != (Size{Width: 640, Height: 480}) {
		t.Errorf("Size = %v, want 640x480", s.Size)
	}

	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  error
	}{
		{"empty width", Settings{Size: Size{Width: 0, Height: 10}}, ErrInvalidSize},
		{"empty height", Settings{Size: Size{Width: 10, Height: 0}}, ErrInvalidSize},
		{"bad samples", Settings{Size: Size{Width: 10, Height: 10}, Samples: 3}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}

			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestKeyString(t *testing.T) {
	tests := map[Key]string{
		KeyA:       "A",
		KeyZ:       "Z",
		Key0:       "D0",
		Key9:       "D9",
		KeyEscape:  "Escape",
		KeyUnknown: "Unknown",
	}

	for key, want := range tests {
		if got := key.String(); got != want {
			t.Errorf("Key(%d).String() = %q, want %q", key, got, want)
		}
	}
}

func TestButtonString(t *testing.T) {
	if got := (Button{Key: KeyX}).String(); got != "X" {
		t.Errorf("String() = %q, want X", got)
	}

	if got := (Button{Mouse: MouseButtonRight, IsMouse: true}).String(); got != "Mouse(1)" {
		t.Errorf("String() = %q, want Mouse(1)", got)
	}
}
