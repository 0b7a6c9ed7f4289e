package ews

import (
	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/wire"
)

// Folder properties.
var (
	FolderID                 = property.NewComplex("Id", wire.ElemFolderID, "folder:FolderId", readOnly, wire.Exchange2007SP1, newFolderID)
	FolderParentFolderID     = property.NewComplex("ParentFolderId", wire.ElemParentFolderID, "folder:ParentFolderId", readOnly, wire.Exchange2007SP1, newFolderID)
	FolderClass              = property.NewString("FolderClass", "FolderClass", "folder:FolderClass", settable, wire.Exchange2007SP1)
	FolderDisplayName        = property.NewString("DisplayName", "DisplayName", "folder:DisplayName", settable, wire.Exchange2007SP1)
	FolderTotalCount         = property.NewInt("TotalCount", "TotalCount", "folder:TotalCount", readOnly, wire.Exchange2007SP1)
	FolderChildFolderCount   = property.NewInt("ChildFolderCount", "ChildFolderCount", "folder:ChildFolderCount", readOnly, wire.Exchange2007SP1)
	FolderExtendedProperties = property.NewExtendedProperties("ExtendedProperties", wire.Exchange2007SP1)
	FolderEffectiveRights    = property.NewFlagSet("EffectiveRights", "EffectiveRights", "folder:EffectiveRights", readOnly, wire.Exchange2007SP1, property.FlagsFromBooleans, effectiveRightNames)
	FolderUnreadCount        = property.NewInt("UnreadCount", "UnreadCount", "folder:UnreadCount", readOnly, wire.Exchange2007SP1)
	FolderWellKnownName      = property.NewString("WellKnownFolderName", "DistinguishedFolderId", "folder:DistinguishedFolderId", readOnly, wire.Exchange2013)
)

// FolderSchema is the schema shared by every folder kind.
var FolderSchema = property.Lazy("Folder", nil, func(r *property.Registrar) {
	r.Add(FolderID)
	r.Add(FolderParentFolderID)
	r.Add(FolderClass)
	r.Add(FolderDisplayName)
	r.Add(FolderTotalCount)
	r.Add(FolderChildFolderCount)
	r.Add(FolderExtendedProperties)
	r.Add(FolderEffectiveRights)
	r.Add(FolderUnreadCount)
	r.Add(FolderWellKnownName)
})

// Folder kinds that add nothing to the base schema.
var (
	CalendarFolderSchema = property.Lazy("CalendarFolder", FolderSchema, nil)
	ContactsFolderSchema = property.Lazy("ContactsFolder", FolderSchema, nil)
	TasksFolderSchema    = property.Lazy("TasksFolder", FolderSchema, nil)
	SearchFolderSchema   = property.Lazy("SearchFolder", FolderSchema, nil)
)
