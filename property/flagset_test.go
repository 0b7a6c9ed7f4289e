package property

import (
	"testing"

	"github.com/rbaliyan/ews/wire"
)

type rights uint32

const (
	rightCreateAssociated rights = 1 << iota
	rightCreateContents
	rightCreateHierarchy
	rightDelete
	rightModify
	rightRead
)

type actions uint32

const (
	actionAccept actions = 1 << iota
	actionDecline
	actionReply
)

var (
	tRights = NewFlagSet("EffectiveRights", "EffectiveRights", "item:EffectiveRights", CanFind, wire.Exchange2007SP1, FlagsFromBooleans, []FlagName[rights]{
		{"CreateAssociated", rightCreateAssociated},
		{"CreateContents", rightCreateContents},
		{"CreateHierarchy", rightCreateHierarchy},
		{"Delete", rightDelete},
		{"Modify", rightModify},
		{"Read", rightRead},
	})
	tActions = NewFlagSet("ResponseObjects", "ResponseObjects", "item:ResponseObjects", CanFind, wire.Exchange2007SP1, FlagsFromPresence, []FlagName[actions]{
		{"AcceptItem", actionAccept},
		{"DeclineItem", actionDecline},
		{"ReplyToItem", actionReply},
	})
	flagSchema = MustSchema("Flags", nil, func(r *Registrar) {
		r.Add(tRights)
		r.Add(tActions)
	})
)

func TestEffectiveRights(t *testing.T) {
	b := NewBag(&testOwner{schema: flagSchema, settings: Settings{Version: wire.Exchange2010}})
	loadXML(t, b, message(`<t:EffectiveRights>`+
		`<t:CreateAssociated>true</t:CreateAssociated><t:CreateContents>false</t:CreateContents>`+
		`<t:ViewPrivateItems>true</t:ViewPrivateItems><t:Read>true</t:Read>`+
		`</t:EffectiveRights>`+
		`<t:ResponseObjects><t:AcceptItem/><t:ForwardItem><t:Subject>x</t:Subject></t:ForwardItem><t:ReplyToItem/></t:ResponseObjects>`), FirstClass())

	got, err := tRights.Get(b)
	if err != nil {
		t.Fatal(err)
	}
	if got != rightCreateAssociated|rightRead {
		t.Errorf("rights = %b, want %b", got, rightCreateAssociated|rightRead)
	}
	acts, err := tActions.Get(b)
	if err != nil {
		t.Fatal(err)
	}
	if acts != actionAccept|actionReply {
		t.Errorf("actions = %b", acts)
	}
}

func TestEffectiveRightsJSON(t *testing.T) {
	b := NewBag(&testOwner{schema: flagSchema, settings: Settings{Version: wire.Exchange2010}})
	o, err := wire.DecodeObject([]byte(`{"EffectiveRights":{"Read":true,"Modify":false,"Future":true},` +
		`"ResponseObjects":[{"__type":"DeclineItem:#Exchange"},{"__type":"Unknown:#Exchange"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if err := b.LoadJSON(o, true, FirstClass(), false); err != nil {
		t.Fatal(err)
	}
	if got, _ := tRights.Get(b); got != rightRead {
		t.Errorf("rights = %b", got)
	}
	if got, _ := tActions.Get(b); got != actionDecline {
		t.Errorf("actions = %b", got)
	}
}
