package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/andressep95/estate-admin/internal/client"
	"github.com/andressep95/estate-admin/internal/client/middleware"
	"github.com/andressep95/estate-admin/internal/config"
	"github.com/andressep95/estate-admin/internal/domain"
	"github.com/andressep95/estate-admin/internal/navigation"
	"github.com/andressep95/estate-admin/internal/repository"
	"github.com/andressep95/estate-admin/internal/service"
	"github.com/andressep95/estate-admin/pkg/jwt"
	"github.com/andressep95/estate-admin/pkg/validator"
)

const commandName = "estate-admin"

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var errUsage = errors.New("usage")

type app struct {
	store      repository.KeyValueStore
	sessions   *service.SessionManager
	properties *service.PropertyService
	decoder    *jwt.Decoder
	validate   *validator.Validator
	out        io.Writer
	errOut     io.Writer
}

// newApp wires the session manager and the API clients around store. The
// login call goes out without the authorizer, every other admin call
// carries the stored token.
func newApp(cfg *config.Config, store repository.KeyValueStore, transport http.RoundTripper, out, errOut io.Writer) *app {
	navigator := navigation.NewConsoleNavigator(out, commandName)
	validate := validator.NewValidator()
	decoder := jwt.NewDecoder()

	authorized := &http.Client{
		Timeout: cfg.Backend.Timeout,
		Transport: middleware.Chain(transport,
			middleware.RecoveryMiddleware(),
			middleware.LoggerMiddleware(),
			middleware.AuthorizerMiddleware(store, navigator, middleware.AuthorizerConfig{
				AdminLoginPath: cfg.Session.AdminLoginPath,
				LoginPath:      cfg.Session.LoginPath,
			}),
		),
	}
	public := &http.Client{
		Timeout: cfg.Backend.Timeout,
		Transport: middleware.Chain(transport,
			middleware.RecoveryMiddleware(),
			middleware.LoggerMiddleware(),
		),
	}

	adminAPI := client.New(cfg.Backend.URL, authorized)
	publicAPI := client.New(cfg.Backend.URL, public)

	sessions := service.NewSessionManager(store, publicAPI, decoder, service.SessionManagerConfig{
		ExpirySkew:    cfg.Session.ExpirySkew,
		CheckInterval: cfg.Session.CheckInterval,
	})
	properties := service.NewPropertyService(
		client.NewPropertyClient(adminAPI, publicAPI),
		sessions,
		navigator,
		validate,
		cfg.Session.AdminLoginPath,
	)

	return &app{
		store:      store,
		sessions:   sessions,
		properties: properties,
		decoder:    decoder,
		validate:   validate,
		out:        out,
		errOut:     errOut,
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `Usage: %[1]s <command> [flags]

Session:
  login -email <email> [-password <password>]
  logout [-all]
  status
  token
  check
  watch

Properties:
  properties list [-page n] [-limit n] [-status s] [-purpose p] [-city c] [-search q]
  properties approve|reject|delete|get <id>
  properties categorize <id> [-featured] [-top-pick] [-highlighted] [-investment] [-recent]
  properties bulk-categorize -ids <id,id,...> [category flags]
  properties create -file <listing.json>
  properties search <query>
  properties locations [-location name] [-page n] [-limit n]

The password may also be given in ESTATE_ADMIN_PASSWORD.
`, commandName)
}

func (a *app) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		usage(a.errOut)
		return exitUsage
	}

	var err error
	switch args[0] {
	case "login":
		err = a.login(ctx, args[1:])
	case "logout":
		err = a.logout(ctx, args[1:])
	case "status":
		err = a.status(ctx)
	case "token":
		err = a.token(ctx)
	case "check":
		err = a.check(ctx)
	case "watch":
		err = a.watch(ctx)
	case "properties":
		err = a.propertiesCmd(ctx, args[1:])
	case "help", "-h", "--help":
		usage(a.out)
		return exitOK
	default:
		fmt.Fprintf(a.errOut, "unknown command %q\n\n", args[0])
		usage(a.errOut)
		return exitUsage
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return exitUsage
	default:
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
		return exitFailure
	}
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flagSet("login")
	email := fs.String("email", "", "admin email")
	password := fs.String("password", os.Getenv("ESTATE_ADMIN_PASSWORD"), "admin password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := domain.LoginRequest{Email: strings.TrimSpace(*email), Password: *password}
	if err := a.validate.Validate(req); err != nil {
		return err
	}

	result := a.sessions.Login(ctx, req.Email, req.Password)
	if !result.Success {
		return errors.New(result.Error)
	}

	message := result.Message
	if message == "" {
		message = "Logged in"
	}
	fmt.Fprintf(a.out, "%s as %s\n", message, a.sessions.Principal().Email())
	return nil
}

// storeClearer is implemented by stores that can drop a whole namespace.
type storeClearer interface {
	Clear(ctx context.Context) error
}

func (a *app) logout(ctx context.Context, args []string) error {
	fs := a.flagSet("logout")
	all := fs.Bool("all", false, "remove every key of the store namespace")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a.sessions.Logout(ctx)

	if *all {
		clearer, ok := a.store.(storeClearer)
		if !ok {
			return errors.New("the configured store cannot be cleared as a whole")
		}
		if err := clearer.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear store: %w", err)
		}
	}

	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *app) status(ctx context.Context) error {
	a.sessions.Restore(ctx)
	session := a.sessions.Session()

	fmt.Fprintf(a.out, "State: %s\n", session.State)
	if !session.Authenticated {
		return nil
	}

	if name := session.Principal.Name(); name != "" {
		fmt.Fprintf(a.out, "Admin: %s <%s>\n", name, session.Principal.Email())
	} else if email := session.Principal.Email(); email != "" {
		fmt.Fprintf(a.out, "Admin: %s\n", email)
	}

	claims, err := a.decoder.Decode(session.Token)
	if err != nil {
		return nil
	}
	if claims.HasExpiry() {
		fmt.Fprintf(a.out, "Expires: %s\n", claims.ExpiresAt.Local().Format("2006-01-02 15:04:05 MST"))
	} else {
		fmt.Fprintln(a.out, "Expires: never")
	}
	return nil
}

func (a *app) token(ctx context.Context) error {
	token, ok := a.sessions.GetToken(ctx)
	if !ok {
		return errors.New("no admin token stored")
	}
	fmt.Fprintln(a.out, token)
	return nil
}

func (a *app) check(ctx context.Context) error {
	a.sessions.Restore(ctx)
	if a.sessions.CheckExpiration(ctx) {
		fmt.Fprintln(a.out, "Session expired, logged out")
		return nil
	}
	fmt.Fprintf(a.out, "Session %s\n", a.sessions.State())
	return nil
}

// watch keeps the session mounted until interrupted, logging the operator
// out as soon as the token expires.
func (a *app) watch(ctx context.Context) error {
	unmount := a.sessions.Mount(ctx)
	defer unmount()

	fmt.Fprintf(a.out, "Watching %s session, press Ctrl+C to stop\n", a.sessions.State())
	<-ctx.Done()
	return nil
}

func (a *app) propertiesCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage(a.errOut)
		return errUsage
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return a.listProperties(ctx, rest)
	case "approve":
		return a.moderate(ctx, rest, a.properties.ApproveProperty)
	case "reject":
		return a.moderate(ctx, rest, a.properties.RejectProperty)
	case "delete":
		return a.moderate(ctx, rest, a.properties.DeleteProperty)
	case "get":
		return a.moderate(ctx, rest, a.properties.GetProperty)
	case "categorize":
		return a.categorize(ctx, rest)
	case "bulk-categorize":
		return a.bulkCategorize(ctx, rest)
	case "create":
		return a.createProperty(ctx, rest)
	case "search":
		return a.search(ctx, rest)
	case "locations":
		return a.locations(ctx, rest)
	}

	fmt.Fprintf(a.errOut, "unknown properties command %q\n", sub)
	return errUsage
}

func (a *app) listProperties(ctx context.Context, args []string) error {
	var filter domain.PropertyFilter
	fs := a.flagSet("properties list")
	fs.IntVar(&filter.Page, "page", 1, "page number")
	fs.IntVar(&filter.Limit, "limit", 20, "page size")
	fs.StringVar(&filter.Status, "status", "", "pending, approved, rejected or all")
	fs.StringVar(&filter.Purpose, "purpose", "", "listing purpose")
	fs.StringVar(&filter.City, "city", "", "city")
	fs.StringVar(&filter.Search, "search", "", "free text")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a.sessions.Restore(ctx)
	page, err := a.properties.ListProperties(ctx, filter)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCITY\tTYPE\tPRICE\tSTATUS")
	for _, p := range page.Properties {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.City, p.PropertyType, p.ExpectedPrice, p.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Page %d of %d (%d total)\n", filter.Page, page.TotalPages, page.Total)
	return nil
}

func (a *app) moderate(ctx context.Context, args []string, call func(context.Context, string) (*domain.APIResponse, error)) error {
	if len(args) != 1 {
		fmt.Fprintln(a.errOut, "expected exactly one property id")
		return errUsage
	}

	a.sessions.Restore(ctx)
	resp, err := call(ctx, args[0])
	if err != nil {
		return err
	}
	return a.printResponse(resp)
}

func (a *app) categoryFlags(fs *flag.FlagSet) *domain.CategoryUpdate {
	update := &domain.CategoryUpdate{}
	fs.Var(&optionalBool{&update.IsFeatured}, "featured", "featured listing")
	fs.Var(&optionalBool{&update.IsTopPick}, "top-pick", "top pick")
	fs.Var(&optionalBool{&update.IsHighlighted}, "highlighted", "highlighted listing")
	fs.Var(&optionalBool{&update.IsInvestmentProperty}, "investment", "investment property")
	fs.Var(&optionalBool{&update.IsRecentlyAdded}, "recent", "recently added")
	return update
}

func (a *app) categorize(ctx context.Context, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		fmt.Fprintln(a.errOut, "expected a property id before the category flags")
		return errUsage
	}
	id := args[0]

	fs := a.flagSet("properties categorize")
	update := a.categoryFlags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	a.sessions.Restore(ctx)
	resp, err := a.properties.CategorizeProperty(ctx, id, *update)
	if err != nil {
		return err
	}
	return a.printResponse(resp)
}

func (a *app) bulkCategorize(ctx context.Context, args []string) error {
	fs := a.flagSet("properties bulk-categorize")
	ids := fs.String("ids", "", "comma separated property ids")
	update := a.categoryFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	bulk := domain.BulkCategoryUpdate{CategoryUpdate: *update}
	for _, id := range strings.Split(*ids, ",") {
		if id = strings.TrimSpace(id); id != "" {
			bulk.PropertyIDs = append(bulk.PropertyIDs, id)
		}
	}

	a.sessions.Restore(ctx)
	resp, err := a.properties.BulkCategorize(ctx, bulk)
	if err != nil {
		return err
	}
	return a.printResponse(resp)
}

func (a *app) createProperty(ctx context.Context, args []string) error {
	fs := a.flagSet("properties create")
	path := fs.String("file", "", "JSON file describing the listing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		fmt.Fprintln(a.errOut, "-file is required")
		return errUsage
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		return fmt.Errorf("failed to read listing: %w", err)
	}
	var property domain.Property
	if err := json.Unmarshal(data, &property); err != nil {
		return fmt.Errorf("failed to parse listing: %w", err)
	}

	a.sessions.Restore(ctx)
	resp, err := a.properties.CreateProperty(ctx, property)
	if err != nil {
		return err
	}
	return a.printResponse(resp)
}

func (a *app) search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.errOut, "expected a search query")
		return errUsage
	}
	resp, err := a.properties.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	return a.printResponse(resp)
}

func (a *app) locations(ctx context.Context, args []string) error {
	fs := a.flagSet("properties locations")
	location := fs.String("location", "", "restrict to one location")
	page := fs.Int("page", 0, "page number")
	limit := fs.Int("limit", 0, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	params := url.Values{}
	if *page > 0 {
		params.Set("page", strconv.Itoa(*page))
	}
	if *limit > 0 {
		params.Set("limit", strconv.Itoa(*limit))
	}

	resp, err := a.properties.Locations(ctx, *location, params)
	if err != nil {
		return err
	}
	return a.printResponse(resp)
}

// printResponse shows the backend message, then any data block indented.
func (a *app) printResponse(resp *domain.APIResponse) error {
	if resp.Message != "" {
		fmt.Fprintln(a.out, resp.Message)
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil
	}

	var data any
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return fmt.Errorf("failed to read response data: %w", err)
	}
	pretty, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, string(pretty))
	return nil
}

// optionalBool is a boolean flag that stays nil unless given.
type optionalBool struct {
	target **bool
}

func (o *optionalBool) String() string {
	if o.target == nil || *o.target == nil {
		return ""
	}
	return strconv.FormatBool(**o.target)
}

func (o *optionalBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*o.target = &v
	return nil
}

func (o *optionalBool) IsBoolFlag() bool { return true }
