package panel

import (
	"errors"
	"reflect"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func button(id string) discordgo.Button {
	return discordgo.Button{Label: id, Style: discordgo.SuccessButton, CustomID: "verify:" + id}
}

func customIDs(t *testing.T, rows []discordgo.MessageComponent) []string {
	t.Helper()
	buttons, err := Buttons(rows)
	if err != nil {
		t.Fatalf("Buttons() error = %v", err)
	}
	ids := make([]string, 0, len(buttons))
	for _, b := range buttons {
		ids = append(ids, b.CustomID)
	}
	return ids
}

func TestMerge_AppendsAndPreservesOrder(t *testing.T) {
	existing := Rows([]discordgo.Button{button("1"), button("2")})

	rows, err := Merge(existing, button("3"))
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	want := []string{"verify:1", "verify:2", "verify:3"}
	if got := customIDs(t, rows); !reflect.DeepEqual(got, want) {
		t.Errorf("custom IDs = %v, want %v", got, want)
	}
}

func TestMerge_CopiesEveryAttribute(t *testing.T) {
	link := discordgo.Button{
		Label:    "Rules",
		Style:    discordgo.LinkButton,
		URL:      "https://example.com/rules",
		Disabled: true,
		Emoji:    &discordgo.ComponentEmoji{Name: "party", ID: "55", Animated: true},
		ID:       7,
	}
	grant := discordgo.Button{
		Label:    "Member",
		Style:    discordgo.DangerButton,
		CustomID: "verify:100",
		Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
	}

	// Components decoded from the API arrive as pointers.
	existing := []discordgo.MessageComponent{
		&discordgo.ActionsRow{Components: []discordgo.MessageComponent{&link, &grant}},
	}

	rows, err := Merge(existing, button("200"))
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	buttons, err := Buttons(rows)
	if err != nil {
		t.Fatalf("Buttons() error = %v", err)
	}
	if len(buttons) != 3 {
		t.Fatalf("len(buttons) = %d, want 3", len(buttons))
	}

	wantLink := link
	wantLink.ID = 0
	if !reflect.DeepEqual(buttons[0], wantLink) {
		t.Errorf("link button = %+v, want %+v", buttons[0], wantLink)
	}
	if !reflect.DeepEqual(buttons[1], grant) {
		t.Errorf("grant button = %+v, want %+v", buttons[1], grant)
	}

	if buttons[0].Emoji == link.Emoji {
		t.Error("emoji shares memory with the source button")
	}
}

func TestMerge_KeepsDuplicateIdentifiers(t *testing.T) {
	existing := Rows([]discordgo.Button{button("1")})

	rows, err := Merge(existing, button("1"))
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	want := []string{"verify:1", "verify:1"}
	if got := customIDs(t, rows); !reflect.DeepEqual(got, want) {
		t.Errorf("custom IDs = %v, want %v", got, want)
	}
}

func TestMerge_SequentialAdditionsAreAssociative(t *testing.T) {
	a, b, c := button("a"), button("b"), button("c")

	stepwise, err := Merge(nil, a)
	if err != nil {
		t.Fatal(err)
	}
	stepwise, err = Merge(stepwise, b)
	if err != nil {
		t.Fatal(err)
	}
	stepwise, err = Merge(stepwise, c)
	if err != nil {
		t.Fatal(err)
	}

	batched, err := Merge(Rows([]discordgo.Button{a, b}), c)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(stepwise, batched) {
		t.Errorf("stepwise = %+v, batched = %+v", stepwise, batched)
	}
}

func TestMerge_RowChunking(t *testing.T) {
	var rows []discordgo.MessageComponent
	var err error
	for i := 0; i < 6; i++ {
		rows, err = Merge(rows, button(string(rune('a'+i))))
		if err != nil {
			t.Fatalf("Merge() #%d error = %v", i, err)
		}
	}

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if n := len(rows[0].(discordgo.ActionsRow).Components); n != RowSize {
		t.Errorf("first row has %d buttons, want %d", n, RowSize)
	}
	if n := len(rows[1].(discordgo.ActionsRow).Components); n != 1 {
		t.Errorf("second row has %d buttons, want 1", n)
	}
}

func TestMerge_Cap(t *testing.T) {
	full := make([]discordgo.Button, MaxControls)
	for i := range full {
		full[i] = button("x")
	}

	_, err := Merge(Rows(full), button("y"))
	if !errors.Is(err, ErrTooManyControls) {
		t.Errorf("Merge() error = %v, want ErrTooManyControls", err)
	}
}

func TestMerge_UnsupportedComponent(t *testing.T) {
	existing := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{CustomID: "menu"},
		}},
	}

	_, err := Merge(existing, button("1"))
	if !errors.Is(err, ErrUnsupportedComponent) {
		t.Errorf("Merge() error = %v, want ErrUnsupportedComponent", err)
	}
}

func TestReconcile_RefusesForeignMessage(t *testing.T) {
	msg := &discordgo.Message{
		Author:     &discordgo.User{ID: "someone-else"},
		Components: Rows([]discordgo.Button{button("1")}),
	}

	_, err := Reconcile(msg, "bot", button("2"))
	if !errors.Is(err, ErrTargetNotEditable) {
		t.Errorf("Reconcile() error = %v, want ErrTargetNotEditable", err)
	}
}

func TestReconcile_OwnMessage(t *testing.T) {
	msg := &discordgo.Message{Author: &discordgo.User{ID: "bot"}}

	rows, err := Reconcile(msg, "bot", button("1"))
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if got := customIDs(t, rows); !reflect.DeepEqual(got, []string{"verify:1"}) {
		t.Errorf("custom IDs = %v", got)
	}
}
