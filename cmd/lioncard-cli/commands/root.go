package commands

import (
	"context"
	"fmt"
	"os"

	"lioncard-backend/lib/configutil"
	configsqlite "lioncard-backend/lib/configutil/sqlite"
	"lioncard-backend/lib/restyutil"
	"lioncard-backend/lib/scrapers/campuscard"
	"lioncard-backend/lib/serviceutil"
	"lioncard-backend/services/lioncard"
	lioncarddb "lioncard-backend/services/lioncard/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lioncard-cli",
	Short: "lioncard-cli reads campus card balances and activity from the command line.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type Config struct {
	Database      configsqlite.Struct `json:"database"`
	EncryptionKey string              `json:"encryption_key"`
	BaseUrl       string              `json:"base_url"`
	DumpHttp      bool                `json:"dump_http"`

	// optional, `login` without arguments falls back to these
	Username string `json:"username"`
	Password string `json:"password"`
}

func readConfig() Config {
	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return config
}

func newService() *lioncard.Service {
	config := readConfig()

	db, err := config.Database.OpenDB(lioncarddb.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}

	var dump restyutil.InstrumentOutput
	if config.DumpHttp {
		dump = restyutil.NewFilesystemOutput(".dev/resty/campuscard")
	}
	client, err := campuscard.NewClient(campuscard.ClientOptions{
		BaseUrl:          config.BaseUrl,
		InstrumentOutput: dump,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize campus card client", err)
	}

	store, err := lioncard.NewCredentialStore(db, []byte(config.EncryptionKey))
	if err != nil {
		serviceutil.Fatal("failed to initialize credential store", err)
	}

	return lioncard.NewService(lioncard.PortalAuthenticator{Client: client}, store)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
