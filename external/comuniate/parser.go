package comuniate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dani537/fantasy-crew/internal/domain/lineup"
)

// siteMeta is the homepage state a lineup scrape needs: the round being
// predicted and the site's own club identifiers.
type siteMeta struct {
	Round     int
	TeamNames map[int64]string
}

// positionContainers maps fragment container ids onto position labels,
// in field order.
var positionContainers = []struct {
	id    string
	label string
}{
	{"portero", "Portero"},
	{"defensas", "Defensa"},
	{"medios", "Centrocampista"},
	{"delanteros", "Delantero"},
}

func (c *Client) loadSiteMeta(ctx context.Context) (siteMeta, error) {
	html, err := c.get(ctx, c.baseURL+"/")
	if err != nil {
		return siteMeta{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return siteMeta{}, fmt.Errorf("parse homepage: %w", err)
	}

	roundText := strings.TrimSpace(doc.Find("div.fuente_alternativa span.success").First().Text())
	round, err := strconv.Atoi(roundText)
	if err != nil {
		return siteMeta{}, fmt.Errorf("round marker %q not numeric", roundText)
	}

	teams := make(map[int64]string)
	doc.Find("div#fila-escudos a.enlace-escudos").Each(func(_ int, sel *goquery.Selection) {
		rawID, ok := sel.Attr("data-id-equipo")
		if !ok {
			return
		}
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return
		}
		alt, _ := sel.Find("img").First().Attr("alt")
		name := strings.TrimSpace(strings.TrimPrefix(alt, teamAltTextPrefix))
		if name == "" {
			return
		}
		teams[id] = name
	})
	if len(teams) == 0 {
		return siteMeta{}, fmt.Errorf("no clubs found on homepage")
	}

	return siteMeta{Round: round, TeamNames: teams}, nil
}

// ParseLineupFragment extracts one club's signals from the AJAX lineup
// fragment. Starter probability defaults to "100%" when the fragment
// shows no percentage badge; the name of a listed substitute is split
// away from the starter's.
func ParseLineupFragment(html string) ([]lineup.Signal, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse lineup fragment: %w", err)
	}

	var signals []lineup.Signal
	for _, container := range positionContainers {
		doc.Find("div#" + container.id + " div.jugador_campo").Each(func(_ int, sel *goquery.Selection) {
			nameNode := sel.Find("div.nombre_jugador").First()
			reserve := strings.TrimSpace(nameNode.Find("div.alternativo").First().Text())
			name := strings.TrimSpace(nameNode.Text())
			if reserve != "" {
				name = strings.TrimSpace(strings.Replace(name, reserve, "", 1))
			}
			if name == "" {
				return
			}

			chance := strings.TrimSpace(sel.Find("div.icono_porcentaje").First().Text())
			if chance == "" {
				chance = "100%"
			}

			signals = append(signals, lineup.Signal{
				PositionLabel: container.label,
				PlayerName:    name,
				ReserveName:   reserve,
				StarterChance: chance,
				Cautioned:     sel.Find("div.apercibido").Length() > 0,
				Doubtful:      sel.Find("div.duda").Length() > 0,
			})
		})
	}
	return signals, nil
}
