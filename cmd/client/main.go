package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keydrop/keydrop-core/internal/client/authclient"
	"github.com/keydrop/keydrop-core/internal/client/storage"
	"github.com/keydrop/keydrop-core/internal/generator"
	"github.com/keydrop/keydrop-core/internal/notify"
	"github.com/keydrop/keydrop-core/internal/session"
	"github.com/keydrop/keydrop-core/internal/syncengine"
	"github.com/keydrop/keydrop-core/internal/vault"
)

var (
	version   string
	buildDate string
)

// autoLockTimeout is how long a session may sit idle before the
// background locker re-locks it.
const autoLockTimeout = 5 * time.Minute

// client bundles every wired dependency the REPL dispatches commands
// against.
type client struct {
	session      *session.Controller
	deviceState  *storage.DeviceStateStore
	tokenManager *storage.TokenManager
	authClient   *authclient.Client
	engine       *syncengine.Engine
	deviceID     string
	deviceName   string
	subscriber   *notify.CommandSubscriber
	scanner      *bufio.Scanner
}

func main() {
	var (
		baseURL    string
		dataDir    string
		natsURL    string
		deviceName string
		showVer    bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "sync server base URL")
	flag.StringVar(&dataDir, "data-dir", defaultDataDir(), "directory for the local vault blob and device state")
	flag.StringVar(&natsURL, "nats-url", "", "NATS broker URL for push-triggered command polling (empty disables push)")
	flag.StringVar(&deviceName, "device-name", defaultDeviceName(), "friendly name registered for this device")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("Keydrop Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	blobStore, err := storage.NewBlobStore(dataDir)
	if err != nil {
		log.Fatalf("opening vault store: %v", err)
	}
	deviceStateStore, err := storage.NewDeviceStateStore(dataDir)
	if err != nil {
		log.Fatalf("opening device state store: %v", err)
	}

	vaultController := vault.NewController(blobStore)
	sessionController := session.NewController(vaultController)

	authClient := authclient.New(baseURL, nil)
	tokenManager, err := storage.NewTokenManager(deviceStateStore, authClient)
	if err != nil {
		log.Fatalf("loading device state: %v", err)
	}

	state := tokenManager.State()
	deviceID := state.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	if state.DeviceName != "" {
		deviceName = state.DeviceName
	}

	transport := syncengine.NewTransport(baseURL, tokenManager, nil)
	engine := syncengine.New(sessionController, transport, deviceID)

	var subscriber *notify.CommandSubscriber
	if natsURL != "" {
		subscriber, err = notify.NewCommandSubscriber(natsURL, deviceID)
		if err != nil {
			log.Printf("push notifications disabled: %v", err)
			subscriber = nil
		}
	}

	c := &client{
		session:      sessionController,
		deviceState:  deviceStateStore,
		tokenManager: tokenManager,
		authClient:   authClient,
		engine:       engine,
		deviceID:     deviceID,
		deviceName:   deviceName,
		subscriber:   subscriber,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	locker := session.NewAutoLocker(sessionController, autoLockTimeout)
	go locker.Run(ctx)
	go c.pollCommandsLoop(ctx)

	c.repl()

	if subscriber != nil {
		subscriber.Close()
	}
}

// repl runs the interactive shell loop.
func (c *client) repl() {
	c.scanner = bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("keydrop> ")
		if !c.scanner.Scan() {
			break
		}
		line := strings.TrimSpace(c.scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "help":
			c.printHelp()
		case "register":
			c.cmdRegister()
		case "login":
			c.cmdLogin()
		case "create":
			c.cmdCreateVault()
		case "unlock":
			c.cmdUnlock()
		case "lock":
			c.session.Lock()
			fmt.Println("locked")
		case "add":
			c.cmdAdd()
		case "list":
			c.cmdList()
		case "get":
			c.cmdGet(args)
		case "edit":
			c.cmdEdit(args)
		case "delete":
			c.cmdDelete(args)
		case "search":
			c.cmdSearch(args)
		case "find-url":
			c.cmdFindURL(args)
		case "generate":
			c.cmdGenerate(args)
		case "sync":
			c.cmdSync()
		case "status":
			c.cmdStatus()
		case "exit", "quit":
			fmt.Println("bye")
			return
		default:
			fmt.Println("unknown command. Type 'help' for a list of commands.")
		}
	}
}

func (c *client) printHelp() {
	fmt.Println(`Available commands:
  register                register this device and create a new account
  login                   log in from this device
  create                  create a brand-new local vault (before first register/login)
  unlock                  unlock the local vault
  lock                    lock the vault immediately
  add                     add a new item
  list                    list every item
  get <id>                show one item
  edit <id>               edit an existing item
  delete <id>             delete an item
  search <query>          search name/username/url
  find-url <url>          find items matching a URL's domain
  generate password [len] generate a random password
  generate passphrase [n] generate an n-word passphrase
  sync                    push local edits and pull remote changes
  status                  show session and sync state
  exit                    quit`)
}

func (c *client) cmdCreateVault() {
	password, err := storage.ReadMasterPassword(c.scanner, "New master password: ")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := c.session.Create(password); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("vault created and unlocked")
}

func (c *client) cmdUnlock() {
	password, err := storage.ReadMasterPassword(c.scanner, "Master password: ")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := c.session.Unlock(password); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("unlocked")
}

func (c *client) cmdRegister() {
	c.registerOrLogin(c.authClient.Register, "register")
}

func (c *client) cmdLogin() {
	c.registerOrLogin(c.authClient.Login, "login")
}

func (c *client) registerOrLogin(call func(ctx context.Context, login string, authSubkey []byte, deviceID, deviceName string) (authclient.Tokens, error), verb string) {
	if !c.session.Vault().Unlocked() {
		fmt.Println("unlock or create the vault first")
		return
	}

	fmt.Print("Login: ")
	c.scanner.Scan()
	login := strings.TrimSpace(c.scanner.Text())
	if login == "" {
		fmt.Println("login cannot be empty")
		return
	}

	authSubkey, err := c.session.Vault().AuthSubkey()
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tokens, err := call(ctx, login, authSubkey, c.deviceID, c.deviceName)
	if err != nil {
		fmt.Printf("%s failed: %v\n", verb, err)
		return
	}

	if err := c.tokenManager.SetTokens(c.deviceID, c.deviceName, login, tokens); err != nil {
		fmt.Println("error persisting session:", err)
		return
	}
	fmt.Printf("%sed as %s on device %s\n", verb, login, c.deviceID)
}

func (c *client) cmdAdd() {
	if !c.requireUnlocked() {
		return
	}
	item := storage.PromptForItem(c.scanner)
	if item.Password == "" {
		generated, err := generator.GeneratePassword(generator.DefaultPasswordOptions())
		if err != nil {
			fmt.Println("error generating password:", err)
			return
		}
		item.Password = generated
		fmt.Println("generated password:", generated)
	}
	added, err := c.session.Vault().Add(item)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("added item", added.ID)
}

func (c *client) cmdList() {
	if !c.requireUnlocked() {
		return
	}
	items, err := c.session.Vault().Snapshot()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if len(items) == 0 {
		fmt.Println("(empty vault)")
		return
	}
	for _, item := range items {
		fmt.Printf("%s\t%s\t%s\n", item.ID, item.Name, item.URL)
	}
}

func (c *client) cmdGet(args []string) {
	if !c.requireUnlocked() {
		return
	}
	if len(args) < 2 {
		fmt.Println("usage: get <id>")
		return
	}
	item, err := c.session.Vault().Get(args[1])
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	printItem(item)
}

func (c *client) cmdEdit(args []string) {
	if !c.requireUnlocked() {
		return
	}
	if len(args) < 2 {
		fmt.Println("usage: edit <id>")
		return
	}
	current, err := c.session.Vault().Get(args[1])
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	edited := storage.PromptEditItem(c.scanner, current)
	updated, err := c.session.Vault().Update(args[1], edited)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("updated item", updated.ID)
}

func (c *client) cmdDelete(args []string) {
	if !c.requireUnlocked() {
		return
	}
	if len(args) < 2 {
		fmt.Println("usage: delete <id>")
		return
	}
	if err := c.session.Vault().Delete(args[1]); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("deleted item", args[1])
}

func (c *client) cmdSearch(args []string) {
	if !c.requireUnlocked() {
		return
	}
	if len(args) < 2 {
		fmt.Println("usage: search <query>")
		return
	}
	query := strings.Join(args[1:], " ")
	items, err := c.session.Vault().Search(query)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, item := range items {
		fmt.Printf("%s\t%s\t%s\n", item.ID, item.Name, item.URL)
	}
}

func (c *client) cmdFindURL(args []string) {
	if !c.requireUnlocked() {
		return
	}
	if len(args) < 2 {
		fmt.Println("usage: find-url <url>")
		return
	}
	items, err := c.session.Vault().FindByURL(args[1])
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, item := range items {
		fmt.Printf("%s\t%s\t%s\n", item.ID, item.Name, item.Username)
	}
}

func (c *client) cmdGenerate(args []string) {
	// generate doesn't touch the vault, but it's still interactive use
	// of the session; Touch is a no-op while locked.
	c.session.Touch()
	if len(args) < 2 {
		fmt.Println("usage: generate password [length] | generate passphrase [word-count]")
		return
	}
	switch args[1] {
	case "password":
		opts := generator.DefaultPasswordOptions()
		if len(args) >= 3 {
			if n, err := strconv.Atoi(args[2]); err == nil {
				opts.Length = n
			}
		}
		pw, err := generator.GeneratePassword(opts)
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println(pw)
	case "passphrase":
		opts := generator.DefaultPassphraseOptions()
		if len(args) >= 3 {
			if n, err := strconv.Atoi(args[2]); err == nil {
				opts.WordCount = n
			}
		}
		phrase, err := generator.GeneratePassphrase(opts)
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println(phrase)
	default:
		fmt.Println("usage: generate password [length] | generate passphrase [word-count]")
	}
}

func (c *client) cmdSync() {
	if !c.requireUnlocked() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := c.engine.Sync(ctx); err != nil {
		fmt.Println("sync error:", err)
		return
	}
	fmt.Println("sync complete")
}

func (c *client) cmdStatus() {
	state := c.tokenManager.State()
	fmt.Printf("device:  %s (%s)\n", c.deviceID, c.deviceName)
	fmt.Printf("session: %s\n", c.session.State())
	if state.IsRegistered() {
		fmt.Printf("logged in as %s\n", state.Login)
	} else {
		fmt.Println("not registered or logged in")
	}
}

// requireUnlocked reports whether the vault is unlocked, printing a
// hint and returning false otherwise. Every caller that gets past this
// check is about to run a vault operation, so this also records
// activity for the auto-lock idle timer.
func (c *client) requireUnlocked() bool {
	if !c.session.Vault().Unlocked() {
		fmt.Println("vault is locked; run 'unlock' or 'create' first")
		return false
	}
	c.session.Touch()
	return true
}

// pollCommandsLoop dispatches remote lock/wipe commands on a timer,
// waking early whenever the NATS subscriber signals a fresh command
// arrived. Push is a latency optimization only: the ticker alone is
// enough for correctness if no broker is configured.
func (c *client) pollCommandsLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	var wake <-chan struct{}
	if c.subscriber != nil {
		wake = c.subscriber.Wake()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.pollCommandsOnce(ctx)
		case <-wake:
			c.pollCommandsOnce(ctx)
		}
	}
}

func (c *client) pollCommandsOnce(ctx context.Context) {
	state := c.tokenManager.State()
	if !state.IsRegistered() {
		return
	}
	if err := c.engine.PollCommands(ctx, c); err != nil {
		log.Printf("poll commands: %v", err)
	}
}

// Wipe implements syncengine.Wiper: a remote wipe command purges both
// the encrypted vault blob and this device's session tokens, so a
// lost/stolen device can't re-sync or re-authenticate afterward.
func (c *client) Wipe() error {
	if err := c.session.Vault().Wipe(); err != nil {
		return err
	}
	return c.deviceState.Clear()
}

func printItem(item vault.VaultItem) {
	fmt.Printf("id:       %s\n", item.ID)
	fmt.Printf("name:     %s\n", item.Name)
	fmt.Printf("username: %s\n", item.Username)
	fmt.Printf("password: %s\n", item.Password)
	fmt.Printf("url:      %s\n", item.URL)
	fmt.Printf("notes:    %s\n", item.Notes)
	fmt.Printf("category: %s\n", item.Category)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".keydrop"
	}
	return filepath.Join(home, ".keydrop")
}

func defaultDeviceName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return "device-" + hex.EncodeToString(buf)
}
