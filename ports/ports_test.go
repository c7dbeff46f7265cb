package ports

import (
	"errors"
	"testing"

	"go.bug.st/serial/enumerator"
)

var (
	stlinkA = Candidate{Name: "COM3", Manufacturer: "STMicroelectronics", VID: "0483", PID: "374B"}
	stlinkB = Candidate{Name: "COM7", Manufacturer: "STMicroelectronics", VID: "0483", PID: "374E"}
	ftdi    = Candidate{Name: "COM4", Manufacturer: "FTDI", VID: "0403", PID: "6001"}
	builtin = Candidate{Name: "COM1"}
	lower   = Candidate{Name: "COM9", Manufacturer: "stmicroelectronics"}
)

func staticLister(candidates ...Candidate) Lister {
	return ListerFunc(func() ([]Candidate, error) {
		return candidates, nil
	})
}

// recordingChooser remembers what it was offered and returns a fixed answer.
type recordingChooser struct {
	answer  string
	offered []Candidate
	calls   int
}

func (c *recordingChooser) ChoosePort(candidates []Candidate) (string, error) {
	c.calls++
	c.offered = candidates
	return c.answer, nil
}

func TestDiscover(t *testing.T) {
	matches, err := Discover(staticLister(builtin, stlinkA, ftdi, lower, stlinkB), "STMicroelectronics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %v", len(matches), matches)
	}
	if matches[0].Name != "COM3" || matches[1].Name != "COM7" {
		t.Errorf("matches = %v, want COM3 and COM7 in enumeration order", matches)
	}
}

func TestDiscoverPrefix(t *testing.T) {
	suffixed := Candidate{Name: "COM5", Manufacturer: "STMicroelectronics Inc."}

	matches, err := Discover(staticLister(suffixed), "STMicro")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("prefix match failed: %v", matches)
	}
}

func TestDiscoverListerError(t *testing.T) {
	listErr := errors.New("permission denied")
	_, err := Discover(ListerFunc(func() ([]Candidate, error) { return nil, listErr }), "STMicroelectronics")
	if !errors.Is(err, listErr) {
		t.Errorf("error = %v, want %v", err, listErr)
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name        string
		candidates  []Candidate
		answer      string
		want        string
		wantErr     error
		wantPrompts int
	}{
		{
			name:       "no match",
			candidates: []Candidate{builtin, ftdi, lower},
			wantErr:    ErrNoDeviceFound,
		},
		{
			name:       "empty system",
			candidates: nil,
			wantErr:    ErrNoDeviceFound,
		},
		{
			name:       "single match auto-selects",
			candidates: []Candidate{builtin, stlinkA, ftdi},
			want:       "COM3",
		},
		{
			name:        "several matches prompt",
			candidates:  []Candidate{stlinkA, ftdi, stlinkB},
			answer:      "COM7\n",
			want:        "COM7",
			wantPrompts: 1,
		},
		{
			name:        "operator answer is not validated",
			candidates:  []Candidate{stlinkA, stlinkB},
			answer:      "COM99",
			want:        "COM99",
			wantPrompts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chooser := &recordingChooser{answer: tt.answer}

			got, err := Select(staticLister(tt.candidates...), "STMicroelectronics", chooser)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("Select() = %q, want %q", got, tt.want)
			}
			if chooser.calls != tt.wantPrompts {
				t.Errorf("chooser called %d times, want %d", chooser.calls, tt.wantPrompts)
			}
			if tt.wantPrompts > 0 {
				for _, c := range chooser.offered {
					if c.Manufacturer != "STMicroelectronics" {
						t.Errorf("chooser offered non-matching port %v", c)
					}
				}
			}
		})
	}
}

func TestSelectChooserError(t *testing.T) {
	chooseErr := errors.New("stdin closed")
	chooser := ChooserFunc(func([]Candidate) (string, error) { return "", chooseErr })

	_, err := Select(staticLister(stlinkA, stlinkB), "STMicroelectronics", chooser)
	if !errors.Is(err, chooseErr) {
		t.Errorf("error = %v, want %v", err, chooseErr)
	}
}

func TestSelectWithoutChooser(t *testing.T) {
	if _, err := Select(staticLister(stlinkA, stlinkB), "STMicroelectronics", nil); err == nil {
		t.Error("expected error when several ports match and no chooser is set")
	}
}

func TestFromDetails(t *testing.T) {
	tests := []struct {
		name    string
		details *enumerator.PortDetails
		want    Candidate
	}{
		{
			name: "st-link",
			details: &enumerator.PortDetails{
				Name: "/dev/ttyACM0", IsUSB: true, VID: "0483", PID: "374b",
				SerialNumber: "0671FF", Product: "STM32 STLink",
			},
			want: Candidate{
				Name: "/dev/ttyACM0", Manufacturer: "STMicroelectronics", Product: "STM32 STLink",
				VID: "0483", PID: "374B", SerialNumber: "0671FF",
			},
		},
		{
			name:    "unknown vendor",
			details: &enumerator.PortDetails{Name: "/dev/ttyUSB0", IsUSB: true, VID: "dead", PID: "beef"},
			want:    Candidate{Name: "/dev/ttyUSB0", VID: "DEAD", PID: "BEEF"},
		},
		{
			name:    "not usb",
			details: &enumerator.PortDetails{Name: "/dev/ttyS0"},
			want:    Candidate{Name: "/dev/ttyS0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fromDetails(tt.details); got != tt.want {
				t.Errorf("fromDetails() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCandidateString(t *testing.T) {
	if got := stlinkA.String(); got != "COM3 (STMicroelectronics)" {
		t.Errorf("String() = %q", got)
	}
	if got := builtin.String(); got != "COM1" {
		t.Errorf("String() = %q", got)
	}
}
