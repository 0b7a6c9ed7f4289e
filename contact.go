package ews

import (
	"time"

	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/recurrence"
)

// Contact is an entry in a contacts folder.
type Contact struct {
	Item
}

func (c *Contact) DisplayName() (string, error)  { return ContactDisplayName.Get(c.bag) }
func (c *Contact) SetDisplayName(s string) error { return ContactDisplayName.Set(c.bag, s) }
func (c *Contact) GivenName() (string, error)    { return ContactGivenName.Get(c.bag) }
func (c *Contact) SetGivenName(s string) error   { return ContactGivenName.Set(c.bag, s) }
func (c *Contact) Surname() (string, error)      { return ContactSurname.Get(c.bag) }
func (c *Contact) SetSurname(s string) error     { return ContactSurname.Set(c.bag, s) }
func (c *Contact) CompanyName() (string, error)  { return ContactCompanyName.Get(c.bag) }
func (c *Contact) SetCompanyName(s string) error { return ContactCompanyName.Set(c.bag, s) }
func (c *Contact) JobTitle() (string, error)     { return ContactJobTitle.Get(c.bag) }
func (c *Contact) SetJobTitle(s string) error    { return ContactJobTitle.Set(c.bag, s) }
func (c *Contact) FileAs() (string, error)       { return ContactFileAs.Get(c.bag) }

func (c *Contact) Birthday() (time.Time, error)  { return ContactBirthday.Get(c.bag) }
func (c *Contact) SetBirthday(t time.Time) error { return ContactBirthday.Set(c.bag, t) }

// EmailAddresses returns the indexed e-mail addresses. Changes to single
// entries are sent as indexed field updates.
func (c *Contact) EmailAddresses() (*property.Dictionary[EmailAddressKey], error) {
	return ContactEmailAddresses.Get(c.bag)
}

func (c *Contact) PhoneNumbers() (*property.Dictionary[PhoneNumberKey], error) {
	return ContactPhoneNumbers.Get(c.bag)
}

func (c *Contact) ImAddresses() (*property.Dictionary[ImAddressKey], error) {
	return ContactImAddresses.Get(c.bag)
}

func (c *Contact) Children() (*property.StringList, error) { return ContactChildren.Get(c.bag) }

// Task is an entry in a tasks folder.
type Task struct {
	Item
}

func (t *Task) Status() (TaskState, error)  { return TaskStatus.Get(t.bag) }
func (t *Task) SetStatus(s TaskState) error { return TaskStatus.Set(t.bag, s) }

func (t *Task) DueDate() (time.Time, error)    { return TaskDueDate.Get(t.bag) }
func (t *Task) SetDueDate(d time.Time) error   { return TaskDueDate.Set(t.bag, d) }
func (t *Task) StartDate() (time.Time, error)  { return TaskStartDate.Get(t.bag) }
func (t *Task) SetStartDate(d time.Time) error { return TaskStartDate.Set(t.bag, d) }

func (t *Task) PercentComplete() (float64, error) { return TaskPercentComplete.Get(t.bag) }

// SetPercentComplete sets the progress, 0 to 100.
func (t *Task) SetPercentComplete(p float64) error { return TaskPercentComplete.Set(t.bag, p) }

func (t *Task) IsComplete() (bool, error) { return TaskIsComplete.Get(t.bag) }
func (t *Task) Owner() (string, error)    { return TaskOwner.Get(t.bag) }

func (t *Task) Recurrence() (*recurrence.Recurrence, error) { return TaskRecurrence.Get(t.bag) }

func (t *Task) SetRecurrence(r *recurrence.Recurrence) error {
	return TaskRecurrence.Set(t.bag, r)
}
