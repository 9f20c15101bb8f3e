package dashboard

import (
	"fmt"
	"strings"

	"github.com/shenikar/sos_assistance_system/internal/client/api"
)

// Локализованный формат времени в попапах и таблице
const timeLayout = "02 Jan 2006 15:04:05"

// Marker - точка на карте панели: по одному маркеру на инцидент,
// идентичность - по id
type Marker struct {
	ID        int64
	Latitude  float64
	Longitude float64
	Popup     string
}

// Markers строит набор маркеров из текущего набора инцидентов.
// Координаты берутся уже распарсенными из любой пришедшей формы.
func Markers(incidents []api.Incident) []Marker {
	markers := make([]Marker, len(incidents))
	for i, inc := range incidents {
		markers[i] = Marker{
			ID:        inc.ID,
			Latitude:  inc.Latitude.Value,
			Longitude: inc.Longitude.Value,
			Popup: fmt.Sprintf("#%d | %s | %s",
				inc.ID, inc.Severity, inc.Timestamp.Local().Format(timeLayout)),
		}
	}
	return markers
}

// RenderTable отрисовывает журнал инцидентов. Чистая функция набора:
// порядок строк повторяет порядок набора (отсортированного по id по
// убыванию), координаты показываются сырой парой из ответа.
func RenderTable(incidents []api.Incident) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-6s %-21s %-8s %s", "ID", "TIME", "LEVEL", "LOCATION")))
	b.WriteString("\n")

	if len(incidents) == 0 {
		b.WriteString(labelStyle.Render("no incidents reported"))
		b.WriteString("\n")
		return b.String()
	}

	for _, inc := range incidents {
		badge := severityStyle(inc.Severity).Render(fmt.Sprintf("%-8s", inc.Severity))
		b.WriteString(fmt.Sprintf("%-6d %-21s %s %s\n",
			inc.ID,
			inc.Timestamp.Local().Format(timeLayout),
			badge,
			valueStyle.Render(inc.Latitude.Raw+", "+inc.Longitude.Raw),
		))
	}
	return b.String()
}

// RenderMarkers отрисовывает маркеры карты списком
func RenderMarkers(incidents []api.Incident) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Map Markers"))
	b.WriteString("\n")
	for _, m := range Markers(incidents) {
		b.WriteString(fmt.Sprintf("%s (%.5f, %.5f)\n", labelStyle.Render(m.Popup), m.Latitude, m.Longitude))
	}
	return b.String()
}
