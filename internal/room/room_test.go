package room

import "testing"

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"collaborative", ModeCollaborative, false},
		{"readonly", ModeReadOnly, false},
		{"", "", true},
		{"READONLY", "", true},
		{"read-only", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q): expected error, got %q", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMode(%q): unexpected error %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNewRoom(t *testing.T) {
	r := New("abc12", "conn-1", ModeReadOnly)

	if r.ID != "abc12" || r.CreatorID != "conn-1" || r.Mode != ModeReadOnly {
		t.Errorf("Unexpected room: %+v", r)
	}
	if r.Document != "" {
		t.Errorf("New room should start with an empty document, got %q", r.Document)
	}
	if r.CreatedAt.IsZero() || r.UpdatedAt.IsZero() {
		t.Error("Timestamps should be set")
	}
}

func TestCanEdit(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		conn string
		want bool
	}{
		{"collaborative room, creator", ModeCollaborative, "creator", true},
		{"collaborative room, other", ModeCollaborative, "other", true},
		{"readonly room, creator", ModeReadOnly, "creator", true},
		{"readonly room, other", ModeReadOnly, "other", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New("r", "creator", tt.mode)
			if got := CanEdit(r, tt.conn); got != tt.want {
				t.Errorf("CanEdit(%s, %s) = %v, want %v", tt.mode, tt.conn, got, tt.want)
			}
		})
	}
}
