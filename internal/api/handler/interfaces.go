package handler

import (
	"context"

	"github.com/Mwvndva/bybloshq-ticketing/internal/application"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/availability"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/event"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/purchase"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/ticket"
)

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error)
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error)
	ListPublishedEvents(ctx context.Context, limit, offset int) ([]*event.Event, error)
	UpdateEvent(ctx context.Context, input application.UpdateEventInput) (*event.Event, error)
	PublishEvent(ctx context.Context, id string) (*event.Event, error)
	CancelEvent(ctx context.Context, id string) (*event.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	GetEventAvailability(ctx context.Context, eventID string) (*application.EventAvailabilityOutput, error)
}

// TicketServiceInterface はチケット種別サービスのインターフェース
type TicketServiceInterface interface {
	CreateTicketType(ctx context.Context, input application.CreateTicketTypeInput) (*ticket.TicketType, error)
	GetTicketType(ctx context.Context, id string) (*ticket.TicketType, error)
	GetTicketTypesByEvent(ctx context.Context, eventID string) ([]*ticket.TicketType, error)
	GetTicketTypeStatus(ctx context.Context, id string) (*ticket.TicketType, availability.TypeStatus, error)
	UpdateTicketType(ctx context.Context, input application.UpdateTicketTypeInput) (*ticket.TicketType, error)
	SetTicketTypeActive(ctx context.Context, id string, active bool) (*ticket.TicketType, error)
	DeleteTicketType(ctx context.Context, id string) error
}

// PurchaseServiceInterface は購入サービスのインターフェース
type PurchaseServiceInterface interface {
	CreatePurchase(ctx context.Context, input application.CreatePurchaseInput) (*purchase.Purchase, error)
	GetPurchase(ctx context.Context, id string) (*purchase.Purchase, error)
	GetUserPurchases(ctx context.Context, userID string, limit, offset int) ([]*purchase.Purchase, error)
	RefundPurchase(ctx context.Context, id string) (*purchase.Purchase, error)
	ExpirePendingPurchases(ctx context.Context) (int, error)
}
