package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flightblender/coordination-engine/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample coordination engine configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/flight-blender/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  blender init

  # Initialize with custom path
  blender init --config /etc/flight-blender/config.yaml

  # Force overwrite existing config
  blender init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error

	if configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		configPath, err = config.InitConfig(initForce)
	}

	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup (database driver, DSS endpoint, KV backend)")
	fmt.Printf("  2. Apply database migrations: blender migrate --config %s\n", configPath)
	fmt.Printf("  3. Start the server: blender serve --config %s\n", configPath)
	fmt.Println("\nSecurity note:")
	fmt.Println("  A random JWT signing secret has been generated for development use.")
	fmt.Println("  For production, generate a secure secret and set it via environment variable:")
	fmt.Println("    # Generates a 64-character hex string (32 bytes of entropy)")
	fmt.Println("    export BLENDER_SERVER_JWT_SECRET=$(openssl rand -hex 32)")

	return nil
}
