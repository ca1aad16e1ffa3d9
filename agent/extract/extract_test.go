package extract

import "testing"

func TestPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"first one, I'm Rohit, 8939177571", "8939177571"},
		{"call me on 9876543210 or 9123456780", "9876543210"},
		{"my number is 98765432101", ""},
		{"98765-43210", ""},
		{"no digits here", ""},
	}
	for _, tt := range tests {
		if got := Phone(tt.in); got != tt.want {
			t.Fatalf("Phone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsPhone(t *testing.T) {
	t.Parallel()

	if !IsPhone("8939177571") {
		t.Fatal("IsPhone(8939177571) = false")
	}
	for _, bad := range []string{"", "893917757", "89391775710", "89391775a1", "+918939177"} {
		if IsPhone(bad) {
			t.Fatalf("IsPhone(%q) = true", bad)
		}
	}
}

func TestName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"first one, I'm Rohit, 8939177571", "Rohit"},
		{"Hi, my name is Priya Sharma and my number is 9876543210", "Priya Sharma"},
		{"I am Anil Kumar Singh", "Anil Kumar"},
		{"i’m Meera", "Meera"},
		{"I'm Rohit and my wife is joining", "Rohit"},
		{"I'm looking for a table, my name is Kabir", "Kabir"},
		{"I'm interested in Bandra", ""},
		{"Im Dev 9876543210", "Dev"},
		{"book 2 people please", ""},
		{"Kim wants a table", ""},
	}
	for _, tt := range tests {
		if got := Name(tt.in); got != tt.want {
			t.Fatalf("Name(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlausibleName(t *testing.T) {
	t.Parallel()

	if !PlausibleName("Rohit") {
		t.Fatal("PlausibleName(Rohit) = false")
	}
	for _, bad := range []string{"", "   ", "Rohit and Priya"} {
		if PlausibleName(bad) {
			t.Fatalf("PlausibleName(%q) = true", bad)
		}
	}
}

func TestSelectionIndex(t *testing.T) {
	t.Parallel()

	names := []string{"Sea Breeze", "Spice Route", "Olive Garden"}
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"first one, I'm Rohit, 8939177571", 0, true},
		{"the 2nd please", 1, true},
		{"3", 2, true},
		{"Let's go with Spice Route", 1, true},
		{"olive garden sounds good", 2, true},
		{"the fifth", 4, true},
		{"I'm Rohit, 8939177571", 0, false},
		{"for 4 people", 0, false},
	}
	for _, tt := range tests {
		got, ok := SelectionIndex(tt.in, names)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Fatalf("SelectionIndex(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSpecialRequests(t *testing.T) {
	t.Parallel()

	got := SpecialRequests("It's a birthday dinner, vegan food and a window seat please")
	want := "birthday, dietary: vegetarian/vegan, seating preference"
	if got != want {
		t.Fatalf("SpecialRequests() = %q, want %q", got, want)
	}
	if got := SpecialRequests("just a table"); got != "" {
		t.Fatalf("SpecialRequests() = %q, want empty", got)
	}
}

func TestConfirmationID(t *testing.T) {
	t.Parallel()

	if got := ConfirmationID("my booking is mum-251125-ab12 thanks"); got != "MUM-251125-AB12" {
		t.Fatalf("ConfirmationID() = %q", got)
	}
	if got := ConfirmationID("confirmation id please"); got != "" {
		t.Fatalf("ConfirmationID() = %q, want empty", got)
	}
}

func TestInfer(t *testing.T) {
	t.Parallel()

	sel := Infer("first one, I'm Rohit, 8939177571", []string{"Sea Breeze", "Spice Route"})
	if !sel.HasIndex() || *sel.Index != 0 {
		t.Fatalf("Infer().Index = %v, want 0", sel.Index)
	}
	if sel.CustomerName != "Rohit" || sel.Phone != "8939177571" {
		t.Fatalf("Infer() = %+v", sel)
	}
}

func TestAggregateNewestFirstPerField(t *testing.T) {
	t.Parallel()

	turns := []string{
		"I'm Old Name, 1111111111",
		"table for 2 in Bandra",
		"my number is 9876543210",
		"I'm Priya",
		"first one",
	}
	got := Aggregate(turns, nil, 6)
	if got.Phone != "9876543210" {
		t.Fatalf("Aggregate().Phone = %q", got.Phone)
	}
	if got.CustomerName != "Priya" {
		t.Fatalf("Aggregate().CustomerName = %q", got.CustomerName)
	}
}

func TestAggregateLookback(t *testing.T) {
	t.Parallel()

	turns := []string{"9876543210", "a", "b", "c"}
	if got := Aggregate(turns, nil, 3); got.Phone != "" {
		t.Fatalf("Aggregate() reached past lookback: %+v", got)
	}
	if got := Aggregate(turns, nil, 4); got.Phone != "9876543210" {
		t.Fatalf("Aggregate() = %+v", got)
	}
}

func TestAggregateOptionIndex(t *testing.T) {
	t.Parallel()

	names := []string{"Sea Breeze", "Spice Route"}
	turns := []string{
		"the first one please",
		"I'm Rohit",
		"let's go with spice route",
		"9876543210",
	}
	got := Aggregate(turns, names, 6)
	if got.Index == nil || *got.Index != 1 {
		t.Fatalf("Aggregate().Index = %v, want 1", got.Index)
	}
	if got.Phone != "9876543210" || got.CustomerName != "Rohit" {
		t.Fatalf("Aggregate() = %+v", got)
	}

	if got := Aggregate(turns[1:], nil, 6); got.Index != nil {
		t.Fatalf("Aggregate() without options found index %d", *got.Index)
	}
	if got := Aggregate([]string{"first one", "I'm Rohit", "9876543210"}, names, 2); got.Index != nil {
		t.Fatalf("Aggregate() reached past lookback for index %d", *got.Index)
	}
}

func TestSelectionMergeKeepsIndex(t *testing.T) {
	t.Parallel()

	earlier := 0
	sel := Selection{}.Merge(Contact{Index: &earlier})
	if sel.HasIndex() {
		t.Fatalf("Merge() copied an earlier option reference: %+v", sel)
	}
}

func TestSelectionMerge(t *testing.T) {
	t.Parallel()

	sel := Selection{CustomerName: "Rohit"}.Merge(Contact{Phone: "9876543210", CustomerName: "Other"})
	if sel.CustomerName != "Rohit" || sel.Phone != "9876543210" {
		t.Fatalf("Merge() = %+v", sel)
	}
}
