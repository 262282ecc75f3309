package main

import (
	"context"

	"lioncard-backend/cmd/lioncard-cli/commands"
	"lioncard-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "lioncard-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
