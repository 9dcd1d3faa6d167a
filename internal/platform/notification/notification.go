// Package notification renders user-facing notifications from templates and
// defines the emitter contract domain services depend on.
package notification

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Kind is the notifications.type column.
type Kind string

const (
	KindAppointment  Kind = "appointment"
	KindPrescription Kind = "prescription"
	KindLabTest      Kind = "lab_test"
	KindSystem       Kind = "system"
)

// Template ids.
const (
	TemplateLabOrderCreated          = "lab-order-created"
	TemplateLabResultReady           = "lab-result-ready"
	TemplatePrescriptionFilled       = "prescription-filled"
	TemplateAppointmentBooked        = "appointment-booked"
	TemplateAppointmentStatusChanged = "appointment-status-changed"
)

// Notice asks the emitter to notify one user about one domain event.
type Notice struct {
	UserID    uuid.UUID
	Template  string
	Data      map[string]string
	Type      Kind // overrides the template's kind when set
	RelatedID *uuid.UUID
}

// Emitter delivers notices. Implementations never report failure to the
// caller: a notice that cannot be stored is logged and dropped.
type Emitter interface {
	Emit(ctx context.Context, n Notice)
}

// Template is a title/message pair with {{key}} placeholders.
type Template struct {
	ID      string
	Title   string
	Message string
	Kind    Kind
}

// Rendered is a template filled with data.
type Rendered struct {
	Title   string
	Message string
	Kind    Kind
}

// TemplateEngine holds the templates by id.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine returns an engine with the built-in templates registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	for _, t := range builtIn {
		e.RegisterTemplate(t)
	}
	return e
}

var builtIn = []Template{
	{
		ID:      TemplateLabOrderCreated,
		Title:   "New lab test ordered",
		Message: "Dr. {{doctor_name}} ordered a {{test_name}} test for you.",
		Kind:    KindLabTest,
	},
	{
		ID:      TemplateLabResultReady,
		Title:   "Lab results ready",
		Message: "Your {{test_name}} results are now available.",
		Kind:    KindLabTest,
	},
	{
		ID:      TemplatePrescriptionFilled,
		Title:   "Prescription filled",
		Message: "Your prescription for {{medication}} has been filled and is ready for pickup.",
		Kind:    KindPrescription,
	},
	{
		ID:      TemplateAppointmentBooked,
		Title:   "New appointment",
		Message: "{{patient_name}} booked an appointment for {{date}}.",
		Kind:    KindAppointment,
	},
	{
		ID:      TemplateAppointmentStatusChanged,
		Title:   "Appointment {{status}}",
		Message: "Your appointment with Dr. {{doctor_name}} on {{date}} was {{status}}.",
		Kind:    KindAppointment,
	},
}

// RegisterTemplate adds or replaces a template.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// TemplateIDs lists registered ids in sorted order.
func (e *TemplateEngine) TemplateIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.templates))
	for id := range e.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Render replaces {{key}} placeholders with data. Placeholders without a
// value are left as they are.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (Rendered, error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return Rendered{}, fmt.Errorf("template %q not found", templateID)
	}

	title, message := t.Title, t.Message
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		title = strings.ReplaceAll(title, placeholder, v)
		message = strings.ReplaceAll(message, placeholder, v)
	}
	return Rendered{Title: title, Message: message, Kind: t.Kind}, nil
}
