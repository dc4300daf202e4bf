package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	PropertiesApp "villastay/internal/app/handlers/properties"
	"villastay/internal/app/queries"
	domainproperty "villastay/internal/domain/property"
)

type PropertyHandler struct {
	Queries queries.Bus
}

func (h PropertyHandler) List(c *gin.Context) {
	minGuests, _ := strconv.Atoi(c.Query("min_guests"))
	q := PropertiesApp.ListPropertiesQuery{
		Type:      domainproperty.Type(c.Query("type")),
		MinGuests: minGuests,
	}
	props, err := queries.Ask[PropertiesApp.ListPropertiesQuery, []*domainproperty.Property](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]propertyResponse, 0, len(props))
	for _, p := range props {
		out = append(out, propertyResponseFrom(p))
	}
	c.JSON(http.StatusOK, gin.H{"properties": out})
}

func (h PropertyHandler) Get(c *gin.Context) {
	q := PropertiesApp.GetPropertyQuery{PropertyID: c.Param("id")}
	p, err := queries.Ask[PropertiesApp.GetPropertyQuery, *domainproperty.Property](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, propertyResponseFrom(p))
}

type propertyResponse struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	NightlyRate string   `json:"nightly_rate"`
	Capacity    int      `json:"capacity"`
	Amenities   []string `json:"amenities,omitempty"`
	Rooms       []string `json:"rooms,omitempty"`
}

func propertyResponseFrom(p *domainproperty.Property) propertyResponse {
	rooms := make([]string, 0, len(p.Rooms))
	for _, id := range p.Rooms {
		rooms = append(rooms, string(id))
	}
	return propertyResponse{
		ID:          string(p.ID),
		Type:        string(p.Type),
		Name:        p.Name,
		Location:    p.Location,
		NightlyRate: p.NightlyRate.String(),
		Capacity:    p.Capacity,
		Amenities:   p.Amenities,
		Rooms:       rooms,
	}
}

var _ PropertyHTTP = PropertyHandler{}
