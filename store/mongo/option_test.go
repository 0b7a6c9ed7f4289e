package mongo

import (
	"testing"
	"time"
)

func TestNewOptions(t *testing.T) {
	tests := []struct {
		name         string
		opts         []Option
		wantDatabase string
		wantTTL      time.Duration
		wantMajority bool
	}{
		{name: "defaults", wantDatabase: DefaultDatabase},
		{name: "empty names ignored", opts: []Option{WithDatabase(""), WithCollection("")}, wantDatabase: DefaultDatabase},
		{name: "ttl", opts: []Option{WithTTL(time.Hour), WithTTL(-1)}, wantDatabase: DefaultDatabase, wantTTL: time.Hour},
		{name: "majority", opts: []Option{WithDatabase("mail"), WithMajorityWrites()}, wantDatabase: "mail", wantMajority: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOptions(tt.opts...)
			if o.database != tt.wantDatabase || o.collection != DefaultCollection {
				t.Errorf("database/collection = %s/%s", o.database, o.collection)
			}
			if o.ttl != tt.wantTTL {
				t.Errorf("ttl = %v, want %v", o.ttl, tt.wantTTL)
			}
			if (o.wc != nil) != tt.wantMajority {
				t.Errorf("write concern set = %v, want %v", o.wc != nil, tt.wantMajority)
			}
		})
	}
}
