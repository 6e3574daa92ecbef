package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"volunteer-hub-system/models"
)

// WriteParticipationCSV renders a mission's participation sheet. One row per
// request, attendance and credited hours included so the sheet matches what
// the points service would award.
func WriteParticipationCSV(w io.Writer, requests []models.ParticipationRequest) error {
	cw := csv.NewWriter(w)

	header := []string{"request_id", "username", "shift", "shift_start", "shift_end", "status", "attended", "credited_hours"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := range requests {
		req := &requests[i]
		username := ""
		if req.User != nil {
			username = req.User.Username
		}
		shiftTitle, shiftStart, shiftEnd := "", "", ""
		if req.Shift != nil {
			shiftTitle = req.Shift.Title
			shiftStart = req.Shift.StartTime.Format(time.RFC3339)
			shiftEnd = req.Shift.EndTime.Format(time.RFC3339)
		}
		row := []string{
			req.ID,
			username,
			shiftTitle,
			shiftStart,
			shiftEnd,
			req.Status,
			fmt.Sprintf("%t", req.Attended),
			fmt.Sprintf("%.2f", req.CreditedHours()),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
