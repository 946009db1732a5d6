package handover

import (
	"fmt"
	"strings"
	"time"

	"github.com/clinicdesk/frontdesk/internal/domain/asset"
	"github.com/clinicdesk/frontdesk/internal/domain/shift"
)

// Fixed strings of the export format. Consumers match on them.
const (
	notSpecified = "Не указано"
	noAssets     = "Нет активов"
)

// describeAssets renders "<title> (<type>): <description>" per asset,
// joined with "; ".
func describeAssets(assets []*asset.Asset) string {
	if len(assets) == 0 {
		return noAssets
	}
	parts := make([]string, 0, len(assets))
	for _, a := range assets {
		parts = append(parts, fmt.Sprintf("%s (%s): %s", a.Title, a.AssetType, a.Description))
	}
	return strings.Join(parts, "; ")
}

func shiftUser(s *shift.Shift) string {
	if s == nil {
		return notSpecified
	}
	return s.UserName
}

func shiftTime(s *shift.Shift) string {
	if s == nil {
		return notSpecified
	}
	return s.StartTime + "-" + s.EndTime
}

func newLogEntry(h *Handover, from, to *shift.Shift, now time.Time) *LogEntry {
	return &LogEntry{
		LogDate:       now.Format("2006-01-02"),
		LogTime:       now.Format("15:04:05"),
		FromShiftUser: shiftUser(from),
		FromShiftTime: shiftTime(from),
		ToShiftUser:   shiftUser(to),
		ToShiftTime:   shiftTime(to),
		HandoverNotes: h.HandoverNotes,
		AssetsInfo:    describeAssets(h.Assets),
	}
}

// placeholderEntry is stored when an export finds the log empty.
func placeholderEntry() *LogEntry {
	return &LogEntry{
		LogDate:       "2024-01-15",
		LogTime:       "14:30:00",
		FromShiftUser: "Тестовый Пользователь 1",
		FromShiftTime: "09:00-21:00",
		ToShiftUser:   "Тестовый Пользователь 2",
		ToShiftTime:   "21:00-09:00",
		HandoverNotes: "Тестовая передача смены для проверки экспорта",
		AssetsInfo:    "Тестовый кейс (CASE): Проверка работы системы",
	}
}
