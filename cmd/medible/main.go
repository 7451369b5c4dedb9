// Command medible is a thin terminal front end for the Medible API. It
// drives the client package end to end: the session token is stored under
// the user config dir, so authenticated commands work across invocations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/PrajwalpGM256/Medible/client"
)

const defaultAPI = "http://localhost:8080"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: medible <command> [flags]

Commands:
  register   -name -email -password   create an account and sign in
  login      -email -password         sign in
  logout                              sign out and forget the token
  whoami                              show the signed-in user
  meds list                           list your medications
  meds add   -drug [-dosage] [-freq]  add a medication
  meds rm    -id                      remove a medication
  search     <query>                  search the drug-label database
  check      -food                    check a food against your medications
  history    list|clear               interaction check history

The API base URL comes from MEDIBLE_API (default %s).
`, defaultAPI)
	os.Exit(2)
}

type app struct {
	api      *client.Client
	session  *client.Session
	registry *client.MedicationRegistry
	history  *client.HistoryCache
}

func newApp() (*app, error) {
	base := os.Getenv("MEDIBLE_API")
	if base == "" {
		base = defaultAPI
	}

	creds, err := client.NewCredentialStore("")
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	api := client.New(base)
	registry := client.NewMedicationRegistry(api)
	history := client.NewHistoryCache(api)
	session := client.NewSession(api, creds, registry, history)

	return &app{api: api, session: session, registry: registry, history: history}, nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	a, err := newApp()
	if err != nil {
		fatal(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "register":
		a.register(ctx, os.Args[2:])
	case "login":
		a.login(ctx, os.Args[2:])
	case "logout":
		a.session.Logout()
		fmt.Println("Signed out.")
	case "whoami":
		a.whoami(ctx)
	case "meds":
		a.meds(ctx, os.Args[2:])
	case "search":
		a.search(ctx, os.Args[2:])
	case "check":
		a.check(ctx, os.Args[2:])
	case "history":
		a.historyCmd(ctx, os.Args[2:])
	default:
		usage()
	}
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "medible: "+msg)
	os.Exit(1)
}

func (a *app) requireAuth(ctx context.Context) {
	if !a.session.ValidateSession(ctx) {
		fatal("not signed in; run `medible login` first")
	}
}

func (a *app) register(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (min 8 characters)")
	_ = fs.Parse(args)
	if *email == "" || *password == "" {
		fatal("register needs -email and -password")
	}

	if !a.session.Register(ctx, *name, *email, *password) {
		fatal(a.session.Err())
	}
	fmt.Printf("Welcome, %s. You are signed in.\n", a.session.UserName())
}

func (a *app) login(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	_ = fs.Parse(args)
	if *email == "" || *password == "" {
		fatal("login needs -email and -password")
	}

	if !a.session.Login(ctx, *email, *password) {
		fatal(a.session.Err())
	}
	fmt.Printf("Signed in as %s.\n", a.session.UserName())
}

func (a *app) whoami(ctx context.Context) {
	a.requireAuth(ctx)
	user := a.session.User()
	fmt.Printf("%s <%s>\n", user.Name, user.Email)
}

func (a *app) meds(ctx context.Context, args []string) {
	if len(args) == 0 {
		usage()
	}
	a.requireAuth(ctx)

	switch args[0] {
	case "list":
		a.registry.FetchMedications(ctx)
		if msg := a.registry.Err(); msg != "" {
			fatal(msg)
		}
		meds := a.registry.Medications()
		if len(meds) == 0 {
			fmt.Println("No medications yet. Add one with `medible meds add -drug <name>`.")
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDRUG\tDOSAGE\tFREQUENCY")
		for _, m := range meds {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.ID, m.DrugName, m.Dosage, m.Frequency)
		}
		w.Flush()
		printInteractions(a.registry.Interactions())

	case "add":
		fs := flag.NewFlagSet("meds add", flag.ExitOnError)
		drug := fs.String("drug", "", "drug name")
		dosage := fs.String("dosage", "", "dosage, e.g. 20mg")
		freq := fs.String("freq", "", "frequency, e.g. daily")
		_ = fs.Parse(args[1:])
		if *drug == "" {
			fatal("meds add needs -drug")
		}
		if !a.registry.AddMedication(ctx, *drug, *dosage, *freq) {
			fatal(a.registry.Err())
		}
		fmt.Printf("Added %s.\n", *drug)
		printInteractions(a.registry.Interactions())

	case "rm":
		fs := flag.NewFlagSet("meds rm", flag.ExitOnError)
		id := fs.Uint("id", 0, "medication id (see `medible meds list`)")
		_ = fs.Parse(args[1:])
		if *id == 0 {
			fatal("meds rm needs -id")
		}
		if !a.registry.RemoveMedication(ctx, uint(*id)) {
			fatal(a.registry.Err())
		}
		fmt.Println("Removed.")

	default:
		usage()
	}
}

func printInteractions(interactions []client.Interaction) {
	if len(interactions) == 0 {
		return
	}
	fmt.Printf("\n%d food interaction(s) to watch:\n", len(interactions))
	for _, i := range interactions {
		fmt.Printf("  [%s] %s + %s: %s\n", i.Severity, i.DrugName, i.FoodName, i.Recommendation)
	}
}

func (a *app) search(ctx context.Context, args []string) {
	if len(args) == 0 {
		fatal("search needs a query")
	}
	a.requireAuth(ctx)

	a.registry.SearchDrugs(ctx, args[0])
	results := a.registry.SearchResults()
	if len(results) == 0 {
		fmt.Println("No matches.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BRAND\tGENERIC\tMANUFACTURER")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.BrandName, r.GenericName, r.Manufacturer)
	}
	w.Flush()
}

func (a *app) check(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	food := fs.String("food", "", "food to check against your medication list")
	save := fs.Bool("save", true, "record the check in your history")
	_ = fs.Parse(args)
	if *food == "" {
		fatal("check needs -food")
	}
	a.requireAuth(ctx)

	a.registry.FetchMedications(ctx)
	if msg := a.registry.Err(); msg != "" {
		fatal(msg)
	}
	meds := a.registry.Medications()
	if len(meds) == 0 {
		fatal("no medications on file; add some with `medible meds add` first")
	}
	names := make([]string, 0, len(meds))
	for _, m := range meds {
		names = append(names, m.DrugName)
	}

	result, err := a.api.CheckFood(ctx, *food, names)
	if err != nil {
		fatal(err.Error())
	}

	if result.TotalWarnings == 0 {
		fmt.Printf("No known interactions between %q and your %d medication(s).\n", *food, len(names))
	} else {
		fmt.Printf("%d warning(s) for %q (worst: %s):\n", result.TotalWarnings, *food, result.MaxSeverity)
		for _, warn := range result.AllWarnings() {
			fmt.Printf("  [%s] %s: %s\n", warn.Severity, warn.DrugName, warn.Recommendation)
		}
	}

	if *save {
		a.history.SaveCheck(ctx, *food, names, result.AllWarnings())
	}
}

func (a *app) historyCmd(ctx context.Context, args []string) {
	if len(args) == 0 {
		usage()
	}
	a.requireAuth(ctx)

	switch args[0] {
	case "list":
		a.history.FetchHistory(ctx, false)
		if msg := a.history.Err(); msg != "" {
			fatal(msg)
		}
		entries := a.history.Entries()
		if len(entries) == 0 {
			fmt.Println("No checks recorded yet.")
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWHEN\tFOOD\tWARNINGS\tWORST")
		for _, e := range entries {
			worst := "-"
			if e.HadInteraction {
				worst = e.MaxSeverity
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"),
				e.FoodName, strconv.Itoa(e.InteractionCount), worst)
		}
		w.Flush()

	case "clear":
		a.history.FetchHistory(ctx, false)
		a.history.ClearHistory(ctx)
		if a.history.TotalChecks() > 0 {
			fatal("failed to clear history")
		}
		fmt.Println("History cleared.")

	default:
		usage()
	}
}
