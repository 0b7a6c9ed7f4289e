package ews

import (
	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/recurrence"
	"github.com/rbaliyan/ews/wire"
)

// Task properties.
var (
	TaskActualWork           = property.NewInt("ActualWork", "ActualWork", "task:ActualWork", deletable, wire.Exchange2007SP1)
	TaskAssignedTime         = property.NewDateTime("AssignedTime", "AssignedTime", "task:AssignedTime", readOnly, wire.Exchange2007SP1)
	TaskBillingInformation   = property.NewString("BillingInformation", "BillingInformation", "task:BillingInformation", deletable, wire.Exchange2007SP1)
	TaskChangeCount          = property.NewInt("ChangeCount", "ChangeCount", "task:ChangeCount", readOnly, wire.Exchange2007SP1)
	TaskCompanies            = property.NewComplex("Companies", "Companies", "task:Companies", collection, wire.Exchange2007SP1, newStringList)
	TaskCompleteDate         = property.NewDateTime("CompleteDate", "CompleteDate", "task:CompleteDate", deletable, wire.Exchange2007SP1)
	TaskContacts             = property.NewComplex("Contacts", "Contacts", "task:Contacts", collection, wire.Exchange2007SP1, newStringList)
	TaskDelegationState      = property.NewString("DelegationState", "DelegationState", "task:DelegationState", readOnly, wire.Exchange2007SP1)
	TaskDelegator            = property.NewString("Delegator", "Delegator", "task:Delegator", readOnly, wire.Exchange2007SP1)
	TaskDueDate              = property.NewDateTime("DueDate", "DueDate", "task:DueDate", deletable, wire.Exchange2007SP1)
	TaskIsAssignmentEditable = property.NewInt("IsAssignmentEditable", "IsAssignmentEditable", "task:IsAssignmentEditable", readOnly, wire.Exchange2007SP1)
	TaskIsComplete           = property.NewBool("IsComplete", "IsComplete", "task:IsComplete", readOnly, wire.Exchange2007SP1)
	TaskIsRecurring          = property.NewBool("IsRecurring", "IsRecurring", "task:IsRecurring", readOnly, wire.Exchange2007SP1)
	TaskIsTeamTask           = property.NewBool("IsTeamTask", "IsTeamTask", "task:IsTeamTask", readOnly, wire.Exchange2007SP1)
	TaskMileage              = property.NewString("Mileage", "Mileage", "task:Mileage", deletable, wire.Exchange2007SP1)
	TaskOwner                = property.NewString("Owner", "Owner", "task:Owner", readOnly, wire.Exchange2007SP1)
	TaskPercentComplete      = property.NewDouble("PercentComplete", "PercentComplete", "task:PercentComplete", deletable, wire.Exchange2007SP1)
	TaskRecurrence           = recurrence.NewDefinition("Recurrence", "Recurrence", "task:Recurrence", deletable, wire.Exchange2007SP1)
	TaskStartDate            = property.NewDateTime("StartDate", "StartDate", "task:StartDate", deletable, wire.Exchange2007SP1)
	TaskStatus               = property.NewEnum("Status", "Status", "task:Status", deletable, wire.Exchange2007SP1, []TaskState{TaskNotStarted, TaskInProgress, TaskCompleted, TaskWaiting, TaskDeferred})
	TaskStatusDescription    = property.NewString("StatusDescription", "StatusDescription", "task:StatusDescription", readOnly, wire.Exchange2007SP1)
	TaskTotalWork            = property.NewInt("TotalWork", "TotalWork", "task:TotalWork", deletable, wire.Exchange2007SP1)
)

// TaskSchema is the schema of tasks.
var TaskSchema = property.Lazy("Task", ItemSchema, func(r *property.Registrar) {
	r.Add(TaskActualWork)
	r.Add(TaskAssignedTime)
	r.Add(TaskBillingInformation)
	r.Add(TaskChangeCount)
	r.Add(TaskCompanies)
	r.Add(TaskCompleteDate)
	r.Add(TaskContacts)
	r.Add(TaskDelegationState)
	r.Add(TaskDelegator)
	r.Add(TaskDueDate)
	r.Add(TaskIsAssignmentEditable)
	r.Add(TaskIsComplete)
	r.Add(TaskIsRecurring)
	r.Add(TaskIsTeamTask)
	r.Add(TaskMileage)
	r.Add(TaskOwner)
	r.Add(TaskPercentComplete)
	r.Add(TaskRecurrence, property.NotInSummary())
	r.Add(TaskStartDate)
	r.Add(TaskStatus)
	r.Add(TaskStatusDescription)
	r.Add(TaskTotalWork)
})
