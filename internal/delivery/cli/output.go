package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"dental-center/internal/delivery/dto"

	"gopkg.in/yaml.v3"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type printer struct {
	out    io.Writer
	format string
}

func newPrinter(out io.Writer, format string) (*printer, error) {
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return &printer{out: out, format: format}, nil
	case "":
		return &printer{out: out, format: FormatText}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

func (p *printer) print(v interface{}) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		return p.printYAML(v)
	default:
		return p.printText(v)
	}
}

// printYAML goes through JSON first so field names follow the json tags
func (p *printer) printYAML(v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(p.out)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

func (p *printer) message(format string, args ...interface{}) error {
	if p.format != FormatText {
		return p.print(map[string]string{"message": fmt.Sprintf(format, args...)})
	}
	_, err := fmt.Fprintf(p.out, format+"\n", args...)
	return err
}

func (p *printer) printText(v interface{}) error {
	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)

	switch val := v.(type) {
	case []dto.PatientResponse:
		fmt.Fprintln(w, "ID\tNAME\tDOB\tCONTACT\tEMAIL")
		for _, patient := range val {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", patient.ID, patient.Name, patient.DOB, patient.Contact, patient.Email)
		}
	case *dto.PatientResponse:
		fmt.Fprintf(w, "ID:\t%s\nName:\t%s\nDOB:\t%s\nContact:\t%s\nEmail:\t%s\nHealth info:\t%s\n",
			val.ID, val.Name, val.DOB, val.Contact, val.Email, val.HealthInfo)
	case []dto.IncidentResponse:
		writeIncidentTable(w, val)
	case *dto.IncidentResponse:
		writeIncident(w, val)
	case []dto.FileResponse:
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tSIZE\tUPLOADED")
		for _, file := range val {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", file.ID, file.Name, file.Type, file.Size, formatTime(file.UploadedAt))
		}
	case *dto.SessionResponse:
		if val.User == nil {
			fmt.Fprintln(w, "Not logged in")
			break
		}
		fmt.Fprintf(w, "Email:\t%s\nRole:\t%s\n", val.User.Email, val.User.Role)
		if val.User.PatientID != nil {
			fmt.Fprintf(w, "Patient:\t%s\n", *val.User.PatientID)
		}
	case *dto.DashboardResponse:
		writeDashboard(w, val)
	default:
		raw, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(raw))
	}

	return w.Flush()
}

func writeIncidentTable(w io.Writer, incidents []dto.IncidentResponse) {
	fmt.Fprintln(w, "ID\tPATIENT\tTITLE\tDATE\tSTATUS\tCOST\tFILES")
	for _, incident := range incidents {
		patient := incident.PatientName
		if patient == "" {
			patient = incident.PatientID
		}
		cost := "-"
		if incident.Cost != nil {
			cost = incident.Cost.StringFixed(2)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			incident.ID, patient, incident.Title, formatTime(incident.AppointmentDate), incident.Status, cost, len(incident.Files))
	}
}

func writeIncident(w io.Writer, incident *dto.IncidentResponse) {
	fmt.Fprintf(w, "ID:\t%s\nPatient:\t%s\nTitle:\t%s\nDescription:\t%s\nDate:\t%s\nStatus:\t%s\n",
		incident.ID, incident.PatientID, incident.Title, incident.Description, formatTime(incident.AppointmentDate), incident.Status)
	if incident.Comments != "" {
		fmt.Fprintf(w, "Comments:\t%s\n", incident.Comments)
	}
	if incident.Cost != nil {
		fmt.Fprintf(w, "Cost:\t%s\n", incident.Cost.StringFixed(2))
	}
	if incident.Treatment != nil {
		fmt.Fprintf(w, "Treatment:\t%s\n", *incident.Treatment)
	}
	if incident.NextAppointmentDate != nil {
		fmt.Fprintf(w, "Next appointment:\t%s\n", formatTime(*incident.NextAppointmentDate))
	}
	for _, file := range incident.Files {
		fmt.Fprintf(w, "File:\t%s %s (%s, %d bytes)\n", file.ID, file.Name, file.Type, file.Size)
	}
}

func writeDashboard(w io.Writer, d *dto.DashboardResponse) {
	if d.Stats != nil {
		fmt.Fprintf(w, "Patients:\t%d\nAppointments:\t%d\nToday:\t%d\nCompleted:\t%d\nPending:\t%d\nCancelled:\t%d\nRevenue:\t%s\nCompletion rate:\t%d%%\n",
			d.Stats.TotalPatients, d.Stats.TotalAppointments, d.Stats.TodayAppointments, d.Stats.CompletedTreatments,
			d.Stats.PendingTreatments, d.Stats.CancelledTreatments, d.Stats.TotalRevenue.StringFixed(2), d.Stats.CompletionRate)
	}
	if d.Summary != nil {
		fmt.Fprintf(w, "Upcoming:\t%d\nCompleted:\t%d\nTotal spent:\t%s\nFiles:\t%d\n",
			d.Summary.Upcoming, d.Summary.Completed, d.Summary.TotalSpent.StringFixed(2), d.Summary.Files)
	}
	if len(d.Top) > 0 {
		fmt.Fprintln(w, "\nTop patients")
		for _, top := range d.Top {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", top.PatientID, top.Name, top.AppointmentCount, top.TotalSpent.StringFixed(2))
		}
	}
	if len(d.Today) > 0 {
		fmt.Fprintln(w, "\nToday")
		writeIncidentTable(w, d.Today)
	}
	fmt.Fprintln(w, "\nUpcoming appointments")
	if len(d.Upcoming) == 0 {
		fmt.Fprintln(w, "none")
		return
	}
	writeIncidentTable(w, d.Upcoming)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return strings.TrimSuffix(t.Format("2006-01-02 15:04 MST"), " UTC")
}
