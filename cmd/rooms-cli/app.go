package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"rooms-client/internal/apiclient"
	"rooms-client/internal/config"
	"rooms-client/internal/domain"
	"rooms-client/internal/filters"
	"rooms-client/internal/navigation"
	"rooms-client/internal/observability"
	"rooms-client/internal/roomform"
	"rooms-client/internal/state"
	"rooms-client/internal/storage"

	"github.com/google/uuid"
)

const usage = `Usage: rooms-cli [-o table|json] <command> [flags] [args]

Commands:
  login      -user NAME -password PASS
  register   -username NAME -email EMAIL -password PASS [-display-name NAME]
  me         show the logged in user
  logout     forget the saved session
  rooms list [-page N] [-page-size N] [-status all|open|closed] [-search TERM] [-quick NAME] [-saved]
  rooms get <slug>
  rooms create -name NAME [-slug SLUG] [-color #RRGGBB] [-icon mdi-x] [-limit N] [-closed]
  rooms update <slug> [-name NAME] [-color #RRGGBB] [-icon mdi-x] [-limit N] [-closed=true|false]
  rooms delete <id|slug>
  filters save [-page-size N] [-status all|open|closed] [-search TERM] [-quick NAME]
  filters load
  filters clear

The password may also be given in ROOMS_PASSWORD.
`

var errUsage = errors.New("invalid usage, run rooms-cli -h")

// app is one CLI invocation with its state containers wired to the API
type app struct {
	out    io.Writer
	errOut io.Writer
	format string

	maxPageSize int

	auth    *state.AuthStore
	rooms   *state.RoomsController
	nav     *navigation.Navigator
	filters *filters.State
}

func newApp(ctx context.Context, cfg *config.Config, store domain.KeyValueStore, out, errOut io.Writer) (*app, error) {
	contract, err := apiclient.LoadContract(ctx, apiclient.ContractMode(cfg.ContractValidation))
	if err != nil {
		return nil, err
	}
	client, err := apiclient.New(apiclient.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.RequestTimeout,
		RateLimit: cfg.APIRateLimit,
		RateBurst: cfg.APIRateBurst,
		Tokens:    storage.TokenSource{Store: store},
		Contract:  contract,
	})
	if err != nil {
		return nil, err
	}

	auth := state.NewAuthStore(apiclient.NewAuthClient(client), store)
	nav := navigation.NewNavigator(navigation.NewRouter(navigation.DefaultRoutes()), auth.IsAuthenticated)
	rooms := state.NewRoomsController(state.NewRoomsStore(apiclient.NewRoomsClient(client)), nav)

	return &app{
		out:         out,
		errOut:      errOut,
		format:      formatTable,
		maxPageSize: cfg.MaxPageSize,
		auth:        auth,
		rooms:       rooms,
		nav:         nav,
		filters: filters.NewState(filters.Options{
			Store:         store,
			StorageKey:    storage.KeyFilters,
			DebounceDelay: cfg.SearchDebounce,
		}),
	}, nil
}

func (a *app) close() {
	a.filters.Close()
}

func (a *app) execute(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rooms-cli", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	fs.Usage = func() { fmt.Fprint(a.errOut, usage) }
	fs.StringVar(&a.format, "o", a.format, "output format: table or json")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	if a.format != formatTable && a.format != formatJSON {
		return fmt.Errorf("unknown output format %q", a.format)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errUsage
	}
	ctx = observability.WithRequestID(ctx, uuid.NewString())
	ctx = observability.WithOperation(ctx, strings.Join(rest[:min(2, len(rest))], " "))

	err := a.dispatch(ctx, rest, fs.Usage)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

func (a *app) dispatch(ctx context.Context, rest []string, usage func()) error {
	switch rest[0] {
	case "login":
		return a.login(ctx, rest[1:])
	case "register":
		return a.register(ctx, rest[1:])
	case "me":
		return a.me(ctx)
	case "logout":
		return a.logout(ctx)
	case "rooms":
		return a.roomsCommand(ctx, rest[1:])
	case "filters":
		return a.filtersCommand(ctx, rest[1:])
	case "help":
		usage()
		return nil
	default:
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// parse accepts the positional argument before or after the flags
func parse(fs *flag.FlagSet, args []string) (string, error) {
	var positional string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		positional, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if positional == "" {
		positional = fs.Arg(0)
	}
	return positional, nil
}

func visited(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	user := fs.String("user", "", "username or email")
	password := fs.String("password", "", "password")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv("ROOMS_PASSWORD")
	}

	resp, err := a.auth.Login(ctx, domain.LoginCredentials{UsernameOrEmail: *user, Password: *password})
	if err != nil {
		return err
	}
	return a.printSession(resp)
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	displayName := fs.String("display-name", "", "display name")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv("ROOMS_PASSWORD")
	}

	req := domain.RegisterRequest{Username: *username, Email: *email, Password: *password}
	if *displayName != "" {
		req.DisplayName = displayName
	}
	resp, err := a.auth.Register(ctx, req)
	if err != nil {
		return err
	}
	return a.printSession(resp)
}

func (a *app) me(ctx context.Context) error {
	a.auth.LoadFromStorage(ctx)
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	return a.printUser(user, a.auth.UserRole())
}

func (a *app) logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	return a.printMessage("Logged out")
}

func (a *app) roomsCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	a.auth.LoadFromStorage(ctx)

	switch args[0] {
	case "list":
		return a.listRooms(ctx, args[1:])
	case "get":
		return a.getRoom(ctx, args[1:])
	case "create":
		return a.createRoom(ctx, args[1:])
	case "update":
		return a.updateRoom(ctx, args[1:])
	case "delete":
		return a.deleteRoom(ctx, args[1:])
	default:
		return fmt.Errorf("unknown rooms command %q", args[0])
	}
}

// filterFlags are shared by "rooms list" and "filters save"
type filterFlags struct {
	page     int
	pageSize int
	status   string
	search   string
	quick    string
}

func (f *filterFlags) register(fs *flag.FlagSet, withPage bool) {
	if withPage {
		fs.IntVar(&f.page, "page", 0, "page number")
	}
	fs.IntVar(&f.pageSize, "page-size", 0, "rooms per page")
	fs.StringVar(&f.status, "status", "", "all, open or closed")
	fs.StringVar(&f.search, "search", "", "search term applied to the loaded page")
	fs.StringVar(&f.quick, "quick", "", "quick filter: All, Open, Closed or Available")
}

// apply pushes the given flags into the filter holder in the order a user
// would set them, so each change lands in the history
func (f *filterFlags) apply(holder *filters.State, set map[string]bool) error {
	if set["quick"] {
		q, ok := filters.QuickFilterByName(f.quick)
		if !ok {
			return fmt.Errorf("unknown quick filter %q", f.quick)
		}
		holder.ApplyQuickFilter(q)
	}
	if set["status"] {
		isOpen, err := parseStatus(f.status)
		if err != nil {
			return err
		}
		holder.SetStatus(isOpen)
	}
	if set["page-size"] && !holder.SetPageSize(f.pageSize) {
		return fmt.Errorf("page size must be at least 1 (got %d)", f.pageSize)
	}
	if set["search"] {
		holder.SetSearch(strings.TrimSpace(f.search))
	}
	if set["page"] && !holder.SetPage(f.page) {
		return fmt.Errorf("page must be at least 1 (got %d)", f.page)
	}
	return nil
}

func parseStatus(s string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "":
		return nil, nil
	case "open":
		return domain.Ptr(true), nil
	case "closed":
		return domain.Ptr(false), nil
	default:
		return nil, fmt.Errorf("unknown status %q, want all, open or closed", s)
	}
}

func (a *app) listRooms(ctx context.Context, args []string) error {
	fs := a.flags("rooms list")
	var ff filterFlags
	ff.register(fs, true)
	saved := fs.Bool("saved", false, "start from the saved filters")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	if *saved && !a.filters.Load(ctx) {
		fmt.Fprintln(a.errOut, "no saved filters, using defaults")
	}
	if err := ff.apply(a.filters, visited(fs)); err != nil {
		return err
	}

	f := a.filters.Filters()
	if _, err := a.rooms.LoadRooms(ctx, &domain.FilterPatch{
		Page:      domain.Ptr(f.Page),
		PageSize:  domain.Ptr(f.PageSize),
		Search:    domain.Ptr(f.Search),
		IsOpen:    f.IsOpen,
		SetIsOpen: true,
	}); err != nil {
		return err
	}
	return a.printRoomList(a.rooms.Snapshot(), a.rooms.Pagination(a.maxPageSize))
}

func (a *app) getRoom(ctx context.Context, args []string) error {
	fs := a.flags("rooms get")
	slug, err := parse(fs, args)
	if err != nil {
		return err
	}
	if slug == "" {
		return errUsage
	}
	room, err := a.rooms.LoadRoom(ctx, slug)
	if err != nil {
		return err
	}
	return a.printRoom(room)
}

// formFlags binds the room form fields to flags
type formFlags struct {
	name   string
	slug   string
	color  string
	icon   string
	limit  int
	closed bool
}

func (f *formFlags) register(fs *flag.FlagSet, withSlug bool) {
	fs.StringVar(&f.name, "name", "", "room name")
	if withSlug {
		fs.StringVar(&f.slug, "slug", "", "URL slug, derived from the name when empty")
	}
	fs.StringVar(&f.color, "color", roomform.DefaultColor, "hex color")
	fs.StringVar(&f.icon, "icon", roomform.DefaultIcon, "mdi icon name")
	fs.IntVar(&f.limit, "limit", roomform.DefaultUserLimit, "maximum number of users")
	fs.BoolVar(&f.closed, "closed", false, "create the room closed")
}

func (f *formFlags) apply(form *roomform.Form, set map[string]bool) {
	if set["name"] {
		form.SetName(f.name)
	}
	if set["slug"] {
		form.SetSlug(f.slug)
	}
	if set["color"] {
		form.SetColor(f.color)
	}
	if set["icon"] {
		form.SetIcon(f.icon)
	}
	if set["limit"] {
		form.SetUserLimit(f.limit)
	}
	if set["closed"] {
		form.SetIsOpen(!f.closed)
	}
}

func (a *app) createRoom(ctx context.Context, args []string) error {
	fs := a.flags("rooms create")
	var ff formFlags
	ff.register(fs, true)
	if _, err := parse(fs, args); err != nil {
		return err
	}
	set := visited(fs)

	form := roomform.New(nil)
	ff.apply(form, set)
	form.FormatSlug(!set["slug"])
	form.MarkAsSubmitted()
	if !form.CanSubmit() {
		return validationError(form.Validation())
	}

	room, err := a.rooms.CreateRoom(ctx, form.CreateRequest())
	if err != nil {
		return err
	}
	return a.printRoom(room)
}

func (a *app) updateRoom(ctx context.Context, args []string) error {
	fs := a.flags("rooms update")
	var ff formFlags
	ff.register(fs, false)
	slug, err := parse(fs, args)
	if err != nil {
		return err
	}
	if slug == "" {
		return errUsage
	}

	room, err := a.rooms.LoadRoom(ctx, slug)
	if err != nil {
		return err
	}
	form := roomform.New(room)
	ff.apply(form, visited(fs))
	form.MarkAsSubmitted()
	if !form.ValidateForm() {
		return validationError(form.Validation())
	}
	if !form.IsDirty() {
		return errors.New("nothing to update")
	}

	updated, err := a.rooms.UpdateRoom(ctx, slug, form.UpdateRequest())
	if err != nil {
		return err
	}
	return a.printRoom(updated)
}

func (a *app) deleteRoom(ctx context.Context, args []string) error {
	fs := a.flags("rooms delete")
	ref, err := parse(fs, args)
	if err != nil {
		return err
	}
	if ref == "" {
		return errUsage
	}

	id := ref
	if _, err := uuid.Parse(ref); err != nil {
		room, err := a.rooms.LoadRoom(ctx, ref)
		if err != nil {
			return err
		}
		id = room.ID
	}
	if err := a.rooms.DeleteRoom(ctx, id); err != nil {
		return err
	}
	return a.printMessage(fmt.Sprintf("Deleted room %s", ref))
}

func (a *app) filtersCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "save":
		fs := a.flags("filters save")
		var ff filterFlags
		ff.register(fs, false)
		if _, err := parse(fs, args[1:]); err != nil {
			return err
		}
		a.filters.Load(ctx)
		if err := ff.apply(a.filters, visited(fs)); err != nil {
			return err
		}
		if err := a.filters.Save(ctx); err != nil {
			return err
		}
		return a.printFilters(a.filters.Filters())
	case "load":
		if !a.filters.Load(ctx) {
			return a.printMessage("No saved filters")
		}
		return a.printFilters(a.filters.Filters())
	case "clear":
		if err := a.filters.Clear(ctx); err != nil {
			return err
		}
		return a.printMessage("Saved filters cleared")
	default:
		return fmt.Errorf("unknown filters command %q", args[0])
	}
}

func validationError(v roomform.Validation) error {
	fields := []struct {
		name string
		res  roomform.Result
	}{
		{"name", v.Name}, {"slug", v.Slug}, {"color", v.Color}, {"icon", v.Icon}, {"userLimit", v.UserLimit},
	}
	var msgs []string
	for _, f := range fields {
		for _, e := range f.res.Errors {
			msgs = append(msgs, f.name+": "+e)
		}
	}
	if len(msgs) == 0 {
		return errors.New("nothing to submit")
	}
	return errors.New(strings.Join(msgs, "\n"))
}
