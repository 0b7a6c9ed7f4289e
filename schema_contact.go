package ews

import (
	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/wire"
)

func newEmailAddressDictionary() *property.Dictionary[EmailAddressKey] {
	return property.NewDictionary[EmailAddressKey]("contacts:EmailAddress")
}

func newPhoneNumberDictionary() *property.Dictionary[PhoneNumberKey] {
	return property.NewDictionary[PhoneNumberKey]("contacts:PhoneNumber")
}

func newImAddressDictionary() *property.Dictionary[ImAddressKey] {
	return property.NewDictionary[ImAddressKey]("contacts:ImAddress")
}

// Contact properties.
var (
	ContactFileAs             = property.NewString("FileAs", "FileAs", "contacts:FileAs", deletable, wire.Exchange2007SP1)
	ContactFileAsMapping      = property.NewString("FileAsMapping", "FileAsMapping", "contacts:FileAsMapping", deletable, wire.Exchange2007SP1)
	ContactDisplayName        = property.NewString("DisplayName", "DisplayName", "contacts:DisplayName", deletable, wire.Exchange2007SP1)
	ContactGivenName          = property.NewString("GivenName", "GivenName", "contacts:GivenName", deletable, wire.Exchange2007SP1)
	ContactInitials           = property.NewString("Initials", "Initials", "contacts:Initials", deletable, wire.Exchange2007SP1)
	ContactMiddleName         = property.NewString("MiddleName", "MiddleName", "contacts:MiddleName", deletable, wire.Exchange2007SP1)
	ContactNickName           = property.NewString("NickName", "Nickname", "contacts:Nickname", deletable, wire.Exchange2007SP1)
	ContactCompanyName        = property.NewString("CompanyName", "CompanyName", "contacts:CompanyName", deletable, wire.Exchange2007SP1)
	ContactEmailAddresses     = property.NewComplex("EmailAddresses", "EmailAddresses", "contacts:EmailAddresses", collection, wire.Exchange2007SP1, newEmailAddressDictionary)
	ContactPhoneNumbers       = property.NewComplex("PhoneNumbers", "PhoneNumbers", "contacts:PhoneNumbers", collection, wire.Exchange2007SP1, newPhoneNumberDictionary)
	ContactAssistantName      = property.NewString("AssistantName", "AssistantName", "contacts:AssistantName", deletable, wire.Exchange2007SP1)
	ContactBirthday           = property.NewDateTime("Birthday", "Birthday", "contacts:Birthday", deletable, wire.Exchange2007SP1)
	ContactBusinessHomePage   = property.NewString("BusinessHomePage", "BusinessHomePage", "contacts:BusinessHomePage", deletable, wire.Exchange2007SP1)
	ContactChildren           = property.NewComplex("Children", "Children", "contacts:Children", collection, wire.Exchange2007SP1, newStringList)
	ContactCompanies          = property.NewComplex("Companies", "Companies", "contacts:Companies", collection, wire.Exchange2007SP1, newStringList)
	ContactDepartment         = property.NewString("Department", "Department", "contacts:Department", deletable, wire.Exchange2007SP1)
	ContactGeneration         = property.NewString("Generation", "Generation", "contacts:Generation", deletable, wire.Exchange2007SP1)
	ContactImAddresses        = property.NewComplex("ImAddresses", "ImAddresses", "contacts:ImAddresses", collection, wire.Exchange2007SP1, newImAddressDictionary)
	ContactJobTitle           = property.NewString("JobTitle", "JobTitle", "contacts:JobTitle", deletable, wire.Exchange2007SP1)
	ContactManager            = property.NewString("Manager", "Manager", "contacts:Manager", deletable, wire.Exchange2007SP1)
	ContactMileage            = property.NewString("Mileage", "Mileage", "contacts:Mileage", deletable, wire.Exchange2007SP1)
	ContactOfficeLocation     = property.NewString("OfficeLocation", "OfficeLocation", "contacts:OfficeLocation", deletable, wire.Exchange2007SP1)
	ContactProfession         = property.NewString("Profession", "Profession", "contacts:Profession", deletable, wire.Exchange2007SP1)
	ContactSpouseName         = property.NewString("SpouseName", "SpouseName", "contacts:SpouseName", deletable, wire.Exchange2007SP1)
	ContactSurname            = property.NewString("Surname", "Surname", "contacts:Surname", deletable, wire.Exchange2007SP1)
	ContactWeddingAnniversary = property.NewDateTime("WeddingAnniversary", "WeddingAnniversary", "contacts:WeddingAnniversary", deletable, wire.Exchange2007SP1)
	ContactHasPicture         = property.NewBool("HasPicture", "HasPicture", "contacts:HasPicture", readOnly, wire.Exchange2010)
)

// ContactSchema is the schema of contacts.
var ContactSchema = property.Lazy("Contact", ItemSchema, func(r *property.Registrar) {
	r.Add(ContactFileAs)
	r.Add(ContactFileAsMapping)
	r.Add(ContactDisplayName)
	r.Add(ContactGivenName)
	r.Add(ContactInitials)
	r.Add(ContactMiddleName)
	r.Add(ContactNickName)
	r.Add(ContactCompanyName)
	r.Add(ContactEmailAddresses, property.NotInSummary())
	r.Add(ContactPhoneNumbers, property.NotInSummary())
	r.Add(ContactAssistantName)
	r.Add(ContactBirthday)
	r.Add(ContactBusinessHomePage)
	r.Add(ContactChildren)
	r.Add(ContactCompanies)
	r.Add(ContactDepartment)
	r.Add(ContactGeneration)
	r.Add(ContactImAddresses, property.NotInSummary())
	r.Add(ContactJobTitle)
	r.Add(ContactManager)
	r.Add(ContactMileage)
	r.Add(ContactOfficeLocation)
	r.Add(ContactProfession)
	r.Add(ContactSpouseName)
	r.Add(ContactSurname)
	r.Add(ContactWeddingAnniversary)
	r.Add(ContactHasPicture)
})
