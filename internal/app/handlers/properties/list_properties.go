package properties

import (
	"context"

	"villastay/internal/app/handlers/support"
	"villastay/internal/app/uow"
	domainproperty "villastay/internal/domain/property"
)

const (
	listPropertiesKey = "properties.list"
	getPropertyKey    = "properties.get"
)

type ListPropertiesQuery struct {
	Type      domainproperty.Type
	MinGuests int
}

func (q ListPropertiesQuery) Key() string { return listPropertiesKey }

type GetPropertyQuery struct {
	PropertyID string
}

func (q GetPropertyQuery) Key() string { return getPropertyKey }

type Handler struct {
	UoWFactory uow.UoWFactory
}

func (h *Handler) List(ctx context.Context, q ListPropertiesQuery) ([]*domainproperty.Property, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	return unit.Properties().Search(ctx, domainproperty.SearchParams{
		Type:      q.Type,
		MinGuests: q.MinGuests,
	})
}

func (h *Handler) Get(ctx context.Context, q GetPropertyQuery) (*domainproperty.Property, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	return unit.Properties().ByID(ctx, domainproperty.PropertyID(q.PropertyID))
}
