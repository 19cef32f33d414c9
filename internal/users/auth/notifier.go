// Copyright (c) 2026 InternPulse. All rights reserved.

package auth

import "context"

// Notifier delivers transactional email on behalf of the auth service.
//
// # Why an interface?
//
// Declaring the contract where it is consumed keeps the auth package free of
// broker details. Production wires the AMQP-backed mailer from the
// notification package; tests inject a recording fake.
type Notifier interface {
	// Send dispatches a single email. Implementations may enqueue rather
	// than deliver synchronously, but must return an error if the message
	// could not be accepted for delivery.
	Send(ctx context.Context, to, subject, htmlBody string) error
}
