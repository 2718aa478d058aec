package billing

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// EventKind classifies calendar entries
type EventKind string

const (
	EventKindRent         EventKind = "rent"
	EventKindService      EventKind = "service"
	EventKindEmployee     EventKind = "employee"
	EventKindOtherPayment EventKind = "otherPayment"
	EventKindAirbnb       EventKind = "airbnb"
	EventKindNone         EventKind = "none"
)

// IsValid checks whether the kind is a known filter value
func (k EventKind) IsValid() bool {
	switch k {
	case EventKindRent, EventKindService, EventKindEmployee,
		EventKindOtherPayment, EventKindAirbnb, EventKindNone:
		return true
	}
	return false
}

// Event is one entry of the monthly payments calendar
type Event struct {
	Kind    EventKind         `json:"kind"`
	Date    time.Time         `json:"date"`
	Label   string            `json:"label"`
	Detail  string            `json:"detail,omitempty"`
	Amount  valueobject.Money `json:"amount"`
	OwnerID uuid.UUID         `json:"owner_id"`
	Overdue bool              `json:"overdue"`
}

// ObligorInfo is the slice of a service account or employee the
// calendar needs: who gets paid, on which day, how much.
type ObligorInfo struct {
	ID     uuid.UUID
	Name   string
	PayDay int
	Amount valueobject.Money
	Active bool
}

// BookingWindow is the slice of a booking the calendar needs
type BookingWindow struct {
	ID         uuid.UUID
	Code       string
	GuestName  string
	SpaceLabel string
	CheckIn    time.Time
	CheckOut   time.Time
}

// CalendarInput carries everything EventsFor needs, precomputed by the
// application layer. Satisfaction sets come from the obligation checker
// so the calendar itself stays pure.
type CalendarInput struct {
	Year  int
	Month time.Month
	Today time.Time

	Spaces        []SpaceBillingInfo
	RentSatisfied map[uuid.UUID]bool

	Services         []ObligorInfo
	ServiceSatisfied map[uuid.UUID]bool

	Employees         []ObligorInfo
	EmployeeSatisfied map[uuid.UUID]bool

	OtherPayments []VirtualInstance

	Bookings []BookingWindow
}

// CalendarService builds the unified monthly payments calendar
type CalendarService struct{}

// NewCalendarService creates a new CalendarService
func NewCalendarService() *CalendarService {
	return &CalendarService{}
}

// EventsFor merges rent, service, employee, ad-hoc and booking events
// for one month, sorted ascending by date. kind filters the result;
// EventKindNone (or empty) returns everything.
func (s *CalendarService) EventsFor(in CalendarInput, kind EventKind) []Event {
	events := make([]Event, 0)
	wants := func(k EventKind) bool {
		return kind == "" || kind == EventKindNone || kind == k
	}

	if wants(EventKindRent) {
		for _, sp := range in.Spaces {
			if !sp.Active || sp.Kind != OwnerRental || sp.PayerName == "" || sp.PayDay < 1 {
				continue
			}
			if in.RentSatisfied[sp.ID] {
				continue
			}
			if e, ok := s.monthlyEvent(EventKindRent, in, sp.ID, sp.PayDay, sp.Label, sp.PayerName, sp.MonthlyAmount); ok {
				events = append(events, e)
			}
		}
	}
	if wants(EventKindService) {
		for _, svc := range in.Services {
			if !svc.Active || in.ServiceSatisfied[svc.ID] {
				continue
			}
			if e, ok := s.monthlyEvent(EventKindService, in, svc.ID, svc.PayDay, svc.Name, "", svc.Amount); ok {
				events = append(events, e)
			}
		}
	}
	if wants(EventKindEmployee) {
		for _, emp := range in.Employees {
			if !emp.Active || in.EmployeeSatisfied[emp.ID] {
				continue
			}
			if e, ok := s.monthlyEvent(EventKindEmployee, in, emp.ID, emp.PayDay, emp.Name, "", emp.Amount); ok {
				events = append(events, e)
			}
		}
	}
	if wants(EventKindOtherPayment) {
		for _, vi := range in.OtherPayments {
			events = append(events, Event{
				Kind:    EventKindOtherPayment,
				Date:    vi.DueDate,
				Label:   vi.Payee,
				Detail:  vi.Detail,
				Amount:  vi.Amount,
				OwnerID: vi.TemplateID,
				Overdue: dateOnly(vi.DueDate).Before(dateOnly(in.Today)),
			})
		}
	}
	if wants(EventKindAirbnb) {
		start := time.Date(in.Year, in.Month, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		inMonth := func(d time.Time) bool {
			d = dateOnly(d)
			return !d.Before(start) && d.Before(end)
		}
		for _, b := range in.Bookings {
			if inMonth(b.CheckIn) {
				events = append(events, Event{
					Kind:    EventKindAirbnb,
					Date:    dateOnly(b.CheckIn),
					Label:   "Check-in " + b.GuestName,
					Detail:  b.SpaceLabel,
					OwnerID: b.ID,
					Overdue: dateOnly(b.CheckIn).Before(dateOnly(in.Today)),
				})
			}
			if inMonth(b.CheckOut) {
				events = append(events, Event{
					Kind:    EventKindAirbnb,
					Date:    dateOnly(b.CheckOut),
					Label:   "Check-out " + b.GuestName,
					Detail:  b.SpaceLabel,
					OwnerID: b.ID,
					Overdue: dateOnly(b.CheckOut).Before(dateOnly(in.Today)),
				})
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events
}

// monthlyEvent synthesizes the due event of a monthly obligor, skipping
// pay days that do not exist in the target month.
func (s *CalendarService) monthlyEvent(
	kind EventKind,
	in CalendarInput,
	ownerID uuid.UUID,
	payDay int,
	label, detail string,
	amount valueobject.Money,
) (Event, bool) {
	due := time.Date(in.Year, in.Month, payDay, 0, 0, 0, 0, time.UTC)
	if due.Month() != in.Month {
		return Event{}, false
	}
	return Event{
		Kind:    kind,
		Date:    due,
		Label:   label,
		Detail:  detail,
		Amount:  amount,
		OwnerID: ownerID,
		Overdue: due.Before(dateOnly(in.Today)),
	}, true
}
