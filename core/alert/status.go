package alert

const (
	StatusPass         Status = "pass"
	StatusWarn         Status = "warn"
	StatusError        Status = "error"
	StatusFail         Status = "fail"
	StatusRuntimeError Status = "runtime error"
)

// Status is the outcome label of a check. Labels are kept exactly as the monitor
// wrote them, including ones outside the known set.
type Status string

func StatusFrom(status string) Status {
	return Status(status)
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsRuntimeError() bool {
	return s == StatusRuntimeError
}

const (
	SendStatusPending SendStatus = "pending"
	SendStatusSent    SendStatus = "sent"
	SendStatusFailed  SendStatus = "failed"
)

// SendStatus tracks whether an alert has been delivered to its channels.
type SendStatus string

func (s SendStatus) String() string {
	return string(s)
}
