package status

import (
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		code    string
		want    Status
		wantErr bool
	}{
		{"", Unset, false},
		{"none", Unset, false},
		{"ing", InProgress, false},
		{"pass", Passed, false},
		{"fail", Failed, false},
		{"PASS", Passed, false},
		{"in-progress", InProgress, false},
		{"done", Unset, true},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := Parse(tt.code)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStatus) {
					t.Fatalf("Parse(%q) error = %v, want ErrInvalidStatus", tt.code, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.code, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestStatus_CodeRoundTrip(t *testing.T) {
	for _, s := range []Status{Unset, InProgress, Passed, Failed} {
		got, err := Parse(s.Code())
		if err != nil || got != s {
			t.Errorf("Parse(%q) = %v, %v; want %v", s.Code(), got, err, s)
		}
	}
}

func TestStatus_JSON(t *testing.T) {
	data, err := json.Marshal(map[string]Status{"a": Passed, "b": InProgress})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"a":"pass","b":"ing"}` {
		t.Errorf("json = %s", data)
	}

	var decoded map[int]Status
	if err := json.Unmarshal([]byte(`{"101":"pass","102":"fail"}`), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded[101] != Passed || decoded[102] != Failed {
		t.Errorf("decoded = %v", decoded)
	}

	if err := json.Unmarshal([]byte(`{"1":"maybe"}`), &decoded); err == nil {
		t.Error("expected error for unknown code")
	}
}

func TestParseCodes(t *testing.T) {
	m, err := ParseCodes(map[int]string{1: "pass", 2: "none", 3: "ing"})
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 2 || m.Get(1) != Passed || m.Get(3) != InProgress || m.Get(2) != Unset {
		t.Errorf("ParseCodes() = %v", m)
	}
	if codes := m.Codes(); codes[1] != "pass" || codes[3] != "ing" || len(codes) != 2 {
		t.Errorf("Codes() = %v", codes)
	}

	if _, err := ParseCodes(map[int]string{1: "bogus"}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("ParseCodes() error = %v, want ErrInvalidStatus", err)
	}
}

func TestStore(t *testing.T) {
	s := NewStore(Map{1: Passed, 2: Unset})
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (Unset seeds dropped)", s.Len())
	}
	if s.Version() != 0 {
		t.Errorf("Version() = %d, want 0", s.Version())
	}

	if !s.Set(2, InProgress) {
		t.Error("Set(2, InProgress) reported no change")
	}
	if s.Set(2, InProgress) {
		t.Error("repeated Set reported a change")
	}
	if s.Version() != 1 {
		t.Errorf("Version() = %d, want 1", s.Version())
	}

	s.Set(3, Passed)
	if got := s.Passed(); !slices.Equal(got, []int{1, 3}) {
		t.Errorf("Passed() = %v, want [1 3]", got)
	}

	s.Set(1, Unset)
	if s.Get(1) != Unset {
		t.Errorf("Get(1) = %v after reset", s.Get(1))
	}
	if _, ok := s.Snapshot()[1]; ok {
		t.Error("Unset entry kept in snapshot")
	}
	if s.Version() != 3 {
		t.Errorf("Version() = %d, want 3", s.Version())
	}
}

func TestStore_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		st   Status
	}{
		{"negative", Status(-1)},
		{"above range", Failed + 1},
		{"far above range", Status(200)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(Map{1: Passed, 2: tt.st})
			if s.Len() != 1 {
				t.Errorf("Len() = %d after seeding %d, want 1", s.Len(), tt.st)
			}
			if s.Set(1, tt.st) {
				t.Errorf("Set(1, %d) reported a change", tt.st)
			}
			if s.Set(3, tt.st) {
				t.Errorf("Set(3, %d) reported a change", tt.st)
			}
			if s.Get(1) != Passed || s.Get(3) != Unset || s.Version() != 0 {
				t.Errorf("store changed: 1=%v 3=%v version=%d", s.Get(1), s.Get(3), s.Version())
			}
		})
	}
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := NewStore(nil)
	s.Set(1, Passed)
	snap := s.Snapshot()
	snap[1] = Failed
	snap[2] = Passed

	if s.Get(1) != Passed || s.Get(2) != Unset {
		t.Error("store mutated through snapshot")
	}
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore(nil)
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.Set(id, Passed)
			_ = s.Get(id)
		}(i)
	}
	wg.Wait()

	if s.Len() != 50 {
		t.Errorf("Len() = %d, want 50", s.Len())
	}
	if s.Version() != 50 {
		t.Errorf("Version() = %d, want 50", s.Version())
	}
}
