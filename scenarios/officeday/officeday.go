// Package officeday provides a bundled scenario that exercises the whole
// flow: scripted environment events, agent slots, a condition event, and a
// validation event.
package officeday

import (
	"github.com/sarchlab/arena/app"
	"github.com/sarchlab/arena/scenario"
	"github.com/sarchlab/arena/sim"
	"github.com/sarchlab/arena/validation"
)

func init() {
	scenario.Register("officeday", func() scenario.Scenario {
		return &officeDay{}
	})
}

// officeDay is a short morning routine. The manager's email arrives, the
// agent is expected to file meeting notes, reply, and put the meeting on
// the calendar. Once the notes file exists, the environment confirms in
// chat.
type officeDay struct{}

func (s *officeDay) Name() string {
	return "officeday"
}

func (s *officeDay) Duration() sim.VTimeInSec {
	return 30
}

func (s *officeDay) UserPrompt() string {
	return "Read the email from your manager, save the meeting agenda to " +
		"notes.txt, reply that you will attend, and add the meeting to " +
		"your calendar from t=20 to t=21."
}

func (s *officeDay) InitApps() ([]sim.App, error) {
	return []sim.App{
		app.NewFilesystem("Files"),
		app.NewEmailClient("Mail", "agent@example.com"),
		app.NewCalendar("Calendar"),
		app.NewChat("Chat"),
	}, nil
}

func (s *officeDay) BuildEvents(
	b *sim.GraphBuilder,
	apps map[string]sim.App,
) error {
	files := scenario.App[*app.Filesystem](apps, "Files")
	mail := apps["Mail"]
	calendar := apps["Calendar"]
	chat := apps["Chat"]

	incoming := b.Call(mail, "receive_email", sim.Args{
		"from":    "manager@example.com",
		"subject": "Team sync",
		"body":    "Agenda: quarterly planning. Meeting at t=20.",
	}).At(1)

	inbox := b.Call(mail, "list_inbox", nil).
		DependsOn(incoming, 1).
		AsAgent()

	notes := b.Call(files, "create_file", sim.Args{
		"name":    "notes.txt",
		"content": "Agenda: quarterly planning. Meeting at t=20.",
	}).DependsOn(inbox, 2).AsAgent()

	reply := b.Call(mail, "send_email", sim.Args{
		"to":      "manager@example.com",
		"subject": "Re: Team sync",
		"body":    "I will attend.",
	}).DependsOn(notes, 1).AsAgent()

	b.Call(calendar, "add_event", sim.Args{
		"title": "Team sync",
		"start": 20.0,
		"end":   21.0,
	}).DependsOn(reply, 1).AsAgent()

	// Environment reacts once the notes landed on disk.
	b.Call(chat, "send_message", sim.Args{
		"conversation": "office",
		"sender":       "manager",
		"text":         "Thanks for filing the notes.",
	}).When(func(_ *sim.RunContext) bool {
		return files.HasFile("notes.txt")
	})

	b.Call(files, "list_files", nil).
		At(29).
		AsValidation()

	return nil
}

func (s *officeDay) Validate(rc *sim.RunContext) validation.Result {
	apps := rc.Apps
	files := apps["Files"].(*app.Filesystem)
	mail := apps["Mail"].(*app.EmailClient)
	calendar := apps["Calendar"].(*app.Calendar)
	chat := apps["Chat"].(*app.Chat)

	check := validation.All(
		validation.NoUnmatchedCalls(),
		validation.CallOrder("Mail", "list_inbox", "Files", "create_file"),
		func(rc *sim.RunContext) validation.Result {
			if !files.HasFile("notes.txt") {
				return validation.Result{Feedback: "notes.txt was not created"}
			}
			if mail.SentCount() != 1 {
				return validation.Result{Feedback: "no reply was sent"}
			}
			if calendar.EventCount() != 1 {
				return validation.Result{Feedback: "the meeting is not on the calendar"}
			}
			if chat.MessageCount("office") != 1 {
				return validation.Result{Feedback: "the environment confirmation is missing"}
			}
			return validation.Result{Success: true}
		},
	)

	return check(rc)
}
