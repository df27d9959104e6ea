// Package queue defines message payloads exchanged over the message broker
// and the background consumer that delivers them.
package queue

// CodeQueueName is the durable queue carrying confirmation-code deliveries.
const CodeQueueName = "auth.code_issued"

// ConfirmationCodeIssued is published whenever signup (re-)issues a
// confirmation code. The consumer delivers the code to the user's email
// out-of-band; the HTTP response never contains it.
type ConfirmationCodeIssued struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Code     string `json:"code"`
	IssuedAt string `json:"issued_at"`
}
