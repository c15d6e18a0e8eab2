package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nishanthgowda94486-cpu/sensidoc.com/pkg/logging"
)

type fakeSender struct {
	sent []EmailMessage
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg EmailMessage) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type staticContacts map[string][2]string

func (c staticContacts) Contact(_ context.Context, userID string) (string, string, error) {
	entry, ok := c[userID]
	if !ok {
		return "", "", errors.New("notify: no contact")
	}
	return entry[0], entry[1], nil
}

func testConfirmation() Confirmation {
	return Confirmation{
		AppointmentID: "apt-1",
		PatientID:     "pat-1",
		DoctorID:      "doc-1",
		Date:          "2025-03-10",
		Time:          "14:00",
		Kind:          "video",
	}
}

func TestBookingConfirmedSendsEmail(t *testing.T) {
	sender := &fakeSender{}
	contacts := staticContacts{"pat-1": {"Ada Lovelace", "ada@example.com"}}
	svc := NewService(sender, contacts, logging.Default())

	svc.BookingConfirmed(context.Background(), testConfirmation())

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	require.Equal(t, "ada@example.com", msg.To)
	require.Equal(t, "Ada Lovelace", msg.ToName)
	require.Contains(t, msg.Body, "2025-03-10")
	require.Contains(t, msg.Body, "14:00")
	require.Contains(t, msg.Body, "video")
}

func TestBookingConfirmedUnknownContact(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, staticContacts{}, logging.Default())

	svc.BookingConfirmed(context.Background(), testConfirmation())
	require.Empty(t, sender.sent)
}

func TestBookingConfirmedDeliveryFailureSwallowed(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	contacts := staticContacts{"pat-1": {"Ada Lovelace", "ada@example.com"}}
	svc := NewService(sender, contacts, logging.Default())

	// Must not panic or propagate the error.
	svc.BookingConfirmed(context.Background(), testConfirmation())
}

func TestBookingConfirmedNilDeps(t *testing.T) {
	NewService(nil, nil, logging.Default()).BookingConfirmed(context.Background(), testConfirmation())

	var svc *Service
	svc.BookingConfirmed(context.Background(), testConfirmation())
}
