package device

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Классы отказов устройств. Сессия захвата различает только их:
// отсутствие датчика приравнивается к отказу в доступе.
var (
	ErrPermissionDenied = errors.New("device access denied")
	ErrUnsupported      = errors.New("device not supported on this runtime")
)

// Location - координаты репортера
type Location struct {
	Latitude  float64
	Longitude float64
}

// LocationProvider - одноразовый запрос позиции устройства
type LocationProvider interface {
	Current(ctx context.Context) (Location, error)
}

// StaticLocationProvider отдает фиксированную точку. Используется на
// стационарных терминалах (SOS_LAT/SOS_LON в окружении).
type StaticLocationProvider struct {
	loc Location
}

func NewStaticLocationProvider(lat, lon string) (*StaticLocationProvider, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid static latitude %q: %w", lat, err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid static longitude %q: %w", lon, err)
	}
	return &StaticLocationProvider{loc: Location{Latitude: la, Longitude: lo}}, nil
}

func (p *StaticLocationProvider) Current(ctx context.Context) (Location, error) {
	return p.loc, nil
}

// ExecLocationProvider получает позицию от внешней утилиты, которая
// печатает строку "lat,lon" (termux-location, corelocation-cli и т.п.)
type ExecLocationProvider struct {
	command string
	args    []string
}

func NewExecLocationProvider(command string, args ...string) *ExecLocationProvider {
	return &ExecLocationProvider{command: command, args: args}
}

func (p *ExecLocationProvider) Current(ctx context.Context) (Location, error) {
	if _, err := exec.LookPath(p.command); err != nil {
		return Location{}, ErrUnsupported
	}

	out, err := exec.CommandContext(ctx, p.command, p.args...).Output()
	if err != nil {
		// Утилита есть, но позицию не отдала - считаем отказом в доступе
		return Location{}, fmt.Errorf("%w: %s failed: %v", ErrPermissionDenied, p.command, err)
	}

	parts := strings.SplitN(strings.TrimSpace(string(out)), ",", 2)
	if len(parts) != 2 {
		return Location{}, fmt.Errorf("%w: unexpected output %q", ErrPermissionDenied, strings.TrimSpace(string(out)))
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Location{}, fmt.Errorf("%w: bad latitude: %v", ErrPermissionDenied, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Location{}, fmt.Errorf("%w: bad longitude: %v", ErrPermissionDenied, err)
	}

	return Location{Latitude: lat, Longitude: lon}, nil
}

// UnsupportedLocationProvider - рантайм вообще без геолокации
type UnsupportedLocationProvider struct{}

func (UnsupportedLocationProvider) Current(ctx context.Context) (Location, error) {
	return Location{}, ErrUnsupported
}
