package ews

import (
	"strings"

	"github.com/rbaliyan/ews/property"
)

// EffectiveRights are the caller's permissions on an object.
type EffectiveRights uint32

const (
	RightCreateAssociated EffectiveRights = 1 << iota
	RightCreateContents
	RightCreateHierarchy
	RightDelete
	RightModify
	RightRead
	RightViewPrivateItems

	RightsNone EffectiveRights = 0
)

var effectiveRightNames = []property.FlagName[EffectiveRights]{
	{Element: "CreateAssociated", Flag: RightCreateAssociated},
	{Element: "CreateContents", Flag: RightCreateContents},
	{Element: "CreateHierarchy", Flag: RightCreateHierarchy},
	{Element: "Delete", Flag: RightDelete},
	{Element: "Modify", Flag: RightModify},
	{Element: "Read", Flag: RightRead},
	{Element: "ViewPrivateItems", Flag: RightViewPrivateItems},
}

// Has reports whether every right in r2 is granted.
func (r EffectiveRights) Has(r2 EffectiveRights) bool { return r&r2 == r2 }

func (r EffectiveRights) String() string {
	return flagString(uint32(r), effectiveRightNames)
}

// ResponseActions are the responses the caller may create for an item.
type ResponseActions uint32

const (
	ActionAccept ResponseActions = 1 << iota
	ActionTentativelyAccept
	ActionDecline
	ActionReply
	ActionReplyAll
	ActionForward
	ActionCancel
	ActionRemoveFromCalendar
	ActionSuppressReadReceipt
	ActionPostReply

	ActionsNone ResponseActions = 0
)

var responseActionNames = []property.FlagName[ResponseActions]{
	{Element: "AcceptItem", Flag: ActionAccept},
	{Element: "TentativelyAcceptItem", Flag: ActionTentativelyAccept},
	{Element: "DeclineItem", Flag: ActionDecline},
	{Element: "ReplyToItem", Flag: ActionReply},
	{Element: "ReplyAllToItem", Flag: ActionReplyAll},
	{Element: "ForwardItem", Flag: ActionForward},
	{Element: "CancelCalendarItem", Flag: ActionCancel},
	{Element: "RemoveItem", Flag: ActionRemoveFromCalendar},
	{Element: "SuppressReadReceipt", Flag: ActionSuppressReadReceipt},
	{Element: "PostReplyItem", Flag: ActionPostReply},
}

// Has reports whether every action in a2 is available.
func (a ResponseActions) Has(a2 ResponseActions) bool { return a&a2 == a2 }

func (a ResponseActions) String() string {
	return flagString(uint32(a), responseActionNames)
}

func flagString[F ~uint32](v uint32, names []property.FlagName[F]) string {
	if v == 0 {
		return "None"
	}
	var parts []string
	for _, n := range names {
		if v&uint32(n.Flag) != 0 {
			parts = append(parts, n.Element)
		}
	}
	return strings.Join(parts, "|")
}
