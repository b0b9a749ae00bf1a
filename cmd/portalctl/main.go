// portalctl is a terminal client for the citizen grievance portal. It
// keeps its session in a file under the user config dir, the same way the
// web gateway keeps one per browser in cookies.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/worldofdc/portal-gateway/config"
	"github.com/worldofdc/portal-gateway/internal/claims"
	"github.com/worldofdc/portal-gateway/internal/directory"
	"github.com/worldofdc/portal-gateway/internal/models"
	"github.com/worldofdc/portal-gateway/internal/otp"
	"github.com/worldofdc/portal-gateway/internal/session"
	"github.com/worldofdc/portal-gateway/internal/upstream"
	"github.com/worldofdc/portal-gateway/pkg/logger"
)

const usage = `Usage: portalctl [flags] <command>

Commands:
  login            citizen login via mobile OTP
  officer-login    officer login via employee id and password
  whoami           show the current session
  logout           clear the session
  complaints       list grievances visible to the session
  meetings         list upcoming meetings
  officers [q]     search the officer directory (-i for interactive)

Flags:
`

func main() {
	sessionPath := flag.String("session", "", "session file path (default: user config dir)")
	interactive := flag.Bool("i", false, "interactive directory search")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load configuration: %v", err)
	}
	// Keep the console quiet; the CLI talks through stdout.
	if err := logger.Initialize(logger.Config{Level: "error", Environment: "development"}); err != nil {
		fatal("initialize logger: %v", err)
	}
	defer logger.Sync()

	path := *sessionPath
	if path == "" {
		if path, err = session.DefaultSessionPath(); err != nil {
			fatal("%v", err)
		}
	}
	store := session.NewStore(session.NewFileStorage(path), nil)
	store.Load()
	client := upstream.NewClient(cfg.Upstream, store)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch flag.Arg(0) {
	case "login":
		err = citizenLogin(ctx, client, store)
	case "officer-login":
		err = officerLogin(ctx, client, store)
	case "whoami":
		err = whoami(ctx, client, store)
	case "logout":
		err = logout(ctx, client, store)
	case "complaints":
		err = listComplaints(ctx, client)
	case "meetings":
		err = listMeetings(ctx, client)
	case "officers":
		if *interactive {
			err = interactiveSearch(ctx, cfg, client)
		} else {
			err = searchOfficers(ctx, client, flag.Arg(1))
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fatal("%v", err)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "portalctl: "+format+"\n", args...)
	os.Exit(1)
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func citizenLogin(ctx context.Context, client *upstream.Client, store *session.Store) error {
	mobile, err := prompt("Mobile number: ")
	if err != nil {
		return err
	}

	challenge := otp.NewChallenge(otp.ModeLogin, client)
	if err := challenge.Send(ctx, mobile); err != nil {
		return fmt.Errorf("%s", challenge.LastError())
	}
	fmt.Println("OTP sent.")

	for {
		code, err := prompt("OTP: ")
		if err != nil {
			return err
		}
		if code == "resend" {
			if err := challenge.Resend(ctx); err != nil {
				return fmt.Errorf("%s", challenge.LastError())
			}
			fmt.Println("OTP resent.")
			continue
		}
		if _, err := challenge.Verify(ctx, code, store); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", challenge.LastError())
			continue
		}
		break
	}

	user, _ := store.User()
	fmt.Printf("Logged in as %s (%s)\n", displayName(user), user.Role)
	return nil
}

func officerLogin(ctx context.Context, client *upstream.Client, store *session.Store) error {
	employeeID, err := prompt("Employee ID: ")
	if err != nil {
		return err
	}
	password, err := prompt("Password: ")
	if err != nil {
		return err
	}

	payload, err := client.OfficerLogin(ctx, models.OfficerLoginRequest{
		EmployeeID: employeeID,
		Password:   password,
	})
	if err != nil {
		return err
	}

	decoded := claims.Decode(payload.Token)
	user := claims.SynthesizeUser(decoded, "")
	if decoded == nil || decoded.Role == "" {
		user.Role = models.RoleOfficer
	}
	if user.EmployeeID == "" {
		user.EmployeeID = employeeID
	}
	if user.ID == "" {
		user.ID = payload.OfficerID
	}
	if err := store.SetAuth(payload.Token, user); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (%s)\n", displayName(user), user.Role)
	return nil
}

func whoami(ctx context.Context, client *upstream.Client, store *session.Store) error {
	user, ok := store.User()
	if !ok {
		fmt.Println("Not logged in.")
		return nil
	}

	// Prefer the backend's view of the profile; the cached session still
	// answers when the backend is unreachable.
	if fresh, err := client.Me(ctx); err == nil {
		user = *fresh
		_ = store.SetAuth(store.Token(), user) //nolint:errcheck
	}
	fmt.Printf("%-12s %s\n", "Name:", displayName(user))
	fmt.Printf("%-12s %s\n", "Role:", user.Role)
	if user.MobileNumber != "" {
		fmt.Printf("%-12s %s\n", "Mobile:", user.MobileNumber)
	}
	if user.EmployeeID != "" {
		fmt.Printf("%-12s %s\n", "Employee ID:", user.EmployeeID)
	}
	return nil
}

func logout(ctx context.Context, client *upstream.Client, store *session.Store) error {
	if store.Token() != "" {
		// Best effort; the local session clears regardless.
		_ = client.Logout(ctx) //nolint:errcheck
	}
	store.Logout()
	fmt.Println("Logged out.")
	return nil
}

func listComplaints(ctx context.Context, client *upstream.Client) error {
	complaints, err := client.ListComplaints(ctx)
	if err != nil {
		return err
	}
	if len(complaints) == 0 {
		fmt.Println("No complaints.")
		return nil
	}
	for _, cp := range complaints {
		fmt.Printf("%-26s %-12s %-8s %s\n", cp.ID, cp.Status, cp.Priority, cp.Title)
	}
	return nil
}

func listMeetings(ctx context.Context, client *upstream.Client) error {
	meetings, err := client.UpcomingMeetings(ctx)
	if err != nil {
		return err
	}
	if len(meetings) == 0 {
		fmt.Println("No upcoming meetings.")
		return nil
	}
	for _, m := range meetings {
		fmt.Printf("%-26s %-20s %s\n", m.ID, m.ScheduledAt, m.Title)
	}
	return nil
}

func searchOfficers(ctx context.Context, client *upstream.Client, query string) error {
	officers, err := client.ListOfficers(ctx, query)
	if err != nil {
		return err
	}
	printOfficers(officers)
	return nil
}

// interactiveSearch reads the query as it is typed line by line and runs
// the same debounced search the web UI uses.
func interactiveSearch(ctx context.Context, cfg *config.Config, client *upstream.Client) error {
	cached := directory.NewCached(client, time.Duration(cfg.Directory.CacheTTLSeconds)*time.Second)
	debouncer := directory.NewDebouncer(cached,
		time.Duration(cfg.Directory.DebounceMillis)*time.Millisecond,
		func(r directory.Result) {
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "search %q: %v\n", r.Query, r.Err)
				return
			}
			fmt.Printf("-- %q --\n", r.Query)
			printOfficers(r.Officers)
		})
	defer debouncer.Stop()

	fmt.Println("Type to search, empty line to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			return nil
		}
		debouncer.Update(ctx, query)
	}
	return scanner.Err()
}

func printOfficers(officers []models.Officer) {
	if len(officers) == 0 {
		fmt.Println("No officers found.")
		return
	}
	for _, o := range officers {
		status := "approved"
		if !o.IsApproved {
			status = "pending"
		}
		fmt.Printf("%-26s %-24s %-20s %s\n", o.EmployeeID, o.Name, o.Designation, status)
	}
}

func displayName(user models.User) string {
	if user.Name != "" {
		return user.Name
	}
	if user.MobileNumber != "" {
		return user.MobileNumber
	}
	return user.ID
}
