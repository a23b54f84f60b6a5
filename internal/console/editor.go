package console

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"comerciotech/internal/models"

	"github.com/go-playground/validator/v10"
)

// Mode says whether the editor is authoring a new order or reworking a
// persisted one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// ErrUnknownLine reports a line-item key that is not (or no longer) in
// the edit buffer. Addressing a removed line is a contract violation
// on the caller's side, so it fails loudly instead of no-opping.
var ErrUnknownLine = errors.New("no line item with that key in the edit buffer")

// FieldError is a rejected field value: unknown name, bad number, or a
// required value missing at submit time.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field '%s' %s", e.Field, e.Reason)
}

// Line is one entry of the edit buffer. Key is assigned locally when
// the line enters the buffer and never changes, so commands stay valid
// across removals; display order is the slice order.
type Line struct {
	Key  uint64
	Item models.LineItem
}

// Editor owns the single order being authored or edited. The buffer is
// an independent deep copy of whatever it was seeded from; mutating it
// never touches the ListStore's cached records until a submit succeeds
// and the list is re-fetched.
type Editor struct {
	api      OrderAPI
	store    *ListStore
	validate *validator.Validate

	mode        Mode
	orderID     string
	customerRef string
	orderCode   string
	lines       []Line
	nextKey     uint64
}

// NewEditor creates an editor in a blank create state.
func NewEditor(api OrderAPI, store *ListStore) *Editor {
	e := &Editor{
		api:      api,
		store:    store,
		validate: validator.New(),
	}
	e.StartCreate()
	return e
}

// Mode returns the current editing mode.
func (e *Editor) Mode() Mode { return e.mode }

// OrderID returns the id of the order under edit, or "" in create mode.
func (e *Editor) OrderID() string { return e.orderID }

// CustomerRef returns the buffered customer reference.
func (e *Editor) CustomerRef() string { return e.customerRef }

// OrderCode returns the buffered order code.
func (e *Editor) OrderCode() string { return e.orderCode }

// Lines returns a copy of the edit buffer in display order.
func (e *Editor) Lines() []Line {
	lines := make([]Line, len(e.lines))
	copy(lines, e.lines)
	return lines
}

// StartCreate resets the editor to a blank create state, discarding
// any buffered order.
func (e *Editor) StartCreate() {
	e.mode = ModeCreate
	e.orderID = ""
	e.customerRef = ""
	e.orderCode = ""
	e.lines = e.lines[:0:0]
}

// StartEdit seeds the buffer from a persisted order. The line items
// are copied into fresh buffer entries, so later mutations cannot leak
// back into the record the order came from.
func (e *Editor) StartEdit(order models.Order) {
	e.mode = ModeEdit
	e.orderID = order.ID
	e.customerRef = order.CustomerRef
	e.orderCode = order.OrderCode
	e.lines = make([]Line, len(order.LineItems))
	for i, item := range order.LineItems {
		e.nextKey++
		e.lines[i] = Line{Key: e.nextKey, Item: item}
	}
}

// SetScalarField updates one top-level order field by its wire name.
func (e *Editor) SetScalarField(name, value string) error {
	switch name {
	case "customerRef":
		e.customerRef = value
	case "orderCode":
		e.orderCode = value
	default:
		return &FieldError{Field: name, Reason: "is not a scalar order field"}
	}
	return nil
}

// AddLine appends a fresh line item with default values and returns
// its key.
func (e *Editor) AddLine() uint64 {
	e.nextKey++
	e.lines = append(e.lines, Line{
		Key: e.nextKey,
		Item: models.LineItem{
			Quantity:       1,
			UnitPrice:      0,
			TotalPurchased: 0,
		},
	})
	return e.nextKey
}

// RemoveLine removes the line with the given key. The relative order
// of the remaining lines is preserved.
func (e *Editor) RemoveLine(key uint64) error {
	idx, err := e.lineIndex(key)
	if err != nil {
		return err
	}
	e.lines = append(e.lines[:idx], e.lines[idx+1:]...)
	return nil
}

// SetLineField updates one field of the line with the given key.
// Number-typed fields are coerced from their string form; a value that
// does not parse is rejected without touching the line.
func (e *Editor) SetLineField(key uint64, field, value string) error {
	idx, err := e.lineIndex(key)
	if err != nil {
		return err
	}
	item := &e.lines[idx].Item

	switch field {
	case "productRef":
		item.ProductRef = value
	case "name":
		item.Name = value
	case "quantity":
		qty, err := strconv.Atoi(value)
		if err != nil {
			return &FieldError{Field: field, Reason: fmt.Sprintf("must be an integer, got %q", value)}
		}
		item.Quantity = qty
	case "unitPrice":
		price, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return &FieldError{Field: field, Reason: fmt.Sprintf("must be a number, got %q", value)}
		}
		item.UnitPrice = price
	case "totalPurchased":
		total, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return &FieldError{Field: field, Reason: fmt.Sprintf("must be a number, got %q", value)}
		}
		item.TotalPurchased = total
	default:
		return &FieldError{Field: field, Reason: "is not a line item field"}
	}
	return nil
}

// Submit validates the buffer and sends it as a single aggregate
// payload: PUT for an order under edit, POST for a new one. On success
// the editor returns to a blank create state and the order list is
// refreshed; on failure the buffer and mode stay untouched so the
// operator can correct and retry.
func (e *Editor) Submit(ctx context.Context) error {
	order := e.buildOrder()
	if err := e.validate.Struct(order); err != nil {
		return validationError(err)
	}

	var submitErr error
	if e.mode == ModeEdit {
		submitErr = e.api.UpdateOrder(ctx, e.orderID, order)
	} else {
		submitErr = e.api.CreateOrder(ctx, order)
	}
	if submitErr != nil {
		return fmt.Errorf("failed to submit order: %w", submitErr)
	}

	e.StartCreate()
	if e.store != nil {
		if err := e.store.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
			// The mutation itself succeeded; a failed reload only leaves
			// the previous list visible.
			log.Printf("Warning: order list refresh after submit failed: %v", err)
		}
	}
	return nil
}

// buildOrder serializes the buffer into one aggregate payload.
func (e *Editor) buildOrder() models.Order {
	items := make([]models.LineItem, len(e.lines))
	for i, line := range e.lines {
		items[i] = line.Item
	}
	return models.Order{
		ID:          e.orderID,
		CustomerRef: e.customerRef,
		OrderCode:   e.orderCode,
		LineItems:   items,
	}
}

func (e *Editor) lineIndex(key uint64) (int, error) {
	for i, line := range e.lines {
		if line.Key == key {
			return i, nil
		}
	}
	return 0, fmt.Errorf("line key %d: %w", key, ErrUnknownLine)
}

// validationError rewrites a validator error into a FieldError naming
// the first offending field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return &FieldError{Field: fe.Field(), Reason: "is required"}
		case "gt":
			return &FieldError{Field: fe.Field(), Reason: fmt.Sprintf("must be greater than %s", fe.Param())}
		case "gte":
			return &FieldError{Field: fe.Field(), Reason: fmt.Sprintf("must be at least %s", fe.Param())}
		default:
			return &FieldError{Field: fe.Field(), Reason: fmt.Sprintf("failed on the '%s' rule", fe.Tag())}
		}
	}
	return err
}
