package cmd

import (
	"github.com/spf13/cobra"

	"runc-go/container"
)

var (
	checkpointEngine         string
	checkpointImagePath      string
	checkpointWorkPath       string
	checkpointLeaveRunning   bool
	checkpointTCPEstablished bool
)

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint <container-id>",
	Short: "Checkpoint a running container",
	Long:  `Brokers an invocation of an external checkpoint engine (CRIU convention) against a running container; this runtime does not implement the checkpoint image format itself.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckpoint,
}

var (
	restoreEngine    string
	restoreImagePath string
	restoreWorkPath  string
	restoreDetach    bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore <container-id>",
	Short: "Restore a container from a checkpoint",
	Long:  `Brokers an invocation of an external checkpoint engine (CRIU convention) to restore a container's process tree from a previously taken image.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

func init() {
	checkpointCmd.Flags().StringVar(&checkpointEngine, "engine", "", "checkpoint engine binary (default: criu)")
	checkpointCmd.Flags().StringVar(&checkpointImagePath, "image-path", "", "directory to write the checkpoint image to")
	checkpointCmd.Flags().StringVar(&checkpointWorkPath, "work-path", "", "directory for engine logs")
	checkpointCmd.Flags().BoolVar(&checkpointLeaveRunning, "leave-running", false, "leave the container running after checkpointing")
	checkpointCmd.Flags().BoolVar(&checkpointTCPEstablished, "tcp-established", false, "allow checkpointing established TCP connections")
	rootCmd.AddCommand(checkpointCmd)

	restoreCmd.Flags().StringVar(&restoreEngine, "engine", "", "checkpoint engine binary (default: criu)")
	restoreCmd.Flags().StringVar(&restoreImagePath, "image-path", "", "directory containing the checkpoint image")
	restoreCmd.Flags().StringVar(&restoreWorkPath, "work-path", "", "directory for engine logs")
	restoreCmd.Flags().BoolVar(&restoreDetach, "detach", false, "run the restored container in the background")
	rootCmd.AddCommand(restoreCmd)
}

func runCheckpoint(cmd *cobra.Command, args []string) error {
	return container.Checkpoint(GetContext(), args[0], GetStateRoot(), &container.CheckpointOptions{
		Engine:         checkpointEngine,
		ImagePath:      checkpointImagePath,
		WorkPath:       checkpointWorkPath,
		LeaveRunning:   checkpointLeaveRunning,
		TCPEstablished: checkpointTCPEstablished,
	})
}

func runRestore(cmd *cobra.Command, args []string) error {
	return container.Restore(GetContext(), args[0], GetStateRoot(), &container.RestoreOptions{
		Engine:    restoreEngine,
		ImagePath: restoreImagePath,
		WorkPath:  restoreWorkPath,
		Detach:    restoreDetach,
	})
}
