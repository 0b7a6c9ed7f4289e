package store

import "testing"

func TestSnapshotSealVerify(t *testing.T) {
	s := &Snapshot{Key: "AAMk", Kind: "Message", Data: []byte("<t:Message/>")}
	s.Seal()
	if len(s.Checksum) != 64 {
		t.Fatalf("Checksum length = %d, want 64", len(s.Checksum))
	}
	if err := s.Verify(); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	c := s.Clone()
	c.Data[1] = 'x'
	if err := c.Verify(); !IsCorrupt(err) {
		t.Errorf("Verify() after change error = %v, want ErrChecksumMismatch", err)
	}
	if err := s.Verify(); err != nil {
		t.Errorf("Clone shares data with original: %v", err)
	}
}

func TestSnapshotValidate(t *testing.T) {
	tests := []struct {
		name    string
		snap    *Snapshot
		wantErr bool
	}{
		{name: "valid", snap: &Snapshot{Key: "k", Kind: "Contact"}},
		{name: "nil", snap: nil, wantErr: true},
		{name: "no key", snap: &Snapshot{Kind: "Contact"}, wantErr: true},
		{name: "no kind", snap: &Snapshot{Key: "k"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsInvalidID(err) {
				t.Errorf("Validate() error = %v, want ErrInvalidID", err)
			}
		})
	}
}

func TestChecksumStable(t *testing.T) {
	if Checksum([]byte("a")) != Checksum([]byte("a")) {
		t.Error("Checksum is not deterministic")
	}
	if Checksum([]byte("a")) == Checksum([]byte("b")) {
		t.Error("Checksum collides for different input")
	}
}
