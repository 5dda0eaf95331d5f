package main

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
)

// buildRootCmd constructs the srctl command tree against a running server.
func buildRootCmd() *cobra.Command {
	server := "http://localhost:9000"
	if v := os.Getenv("UPSCALED_SERVER"); v != "" {
		server = v
	}

	root := &cobra.Command{
		Use:           "srctl",
		Short:         "Operator utilities for an upscaled server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&server, "server", server, "Base URL of the upscaled server (defaults UPSCALED_SERVER)")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List available models grouped by algorithm",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(cmd.OutOrStdout(), server+"/models")
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the process-wide job status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(cmd.OutOrStdout(), server+"/status")
		},
	}

	taskCmd := &cobra.Command{
		Use:   "task <id>",
		Short: "Show the stored record of one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(cmd.OutOrStdout(), server+"/tasks/"+args[0])
		},
	}

	var scale int
	var model string
	var skipAlpha bool
	var resizeTo string
	runCmd := &cobra.Command{
		Use:   "run <image-file>",
		Short: "Submit an upscale job and wait for the result",
		Example: "  srctl run photo.png --model esrgan:x4-ultrasharp --scale 4\n" +
			"  srctl run photo.jpg --model esrgan:x4-ultrasharp --scale 8 --resize-to 1920x1080",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd.OutOrStdout(), server, args[0], model, scale, skipAlpha, resizeTo)
		},
	}
	runCmd.Flags().IntVar(&scale, "scale", 4, "Requested scale factor (1-16)")
	runCmd.Flags().StringVar(&model, "model", "", "Model as 'algo:name' (required)")
	runCmd.Flags().BoolVar(&skipAlpha, "skip-alpha", false, "Upscale the alpha channel by interpolation")
	runCmd.Flags().StringVar(&resizeTo, "resize-to", "", "Override output size: '<width>x...' or '<num>/<den>'")
	_ = runCmd.MarkFlagRequired("model")

	root.AddCommand(modelsCmd, statusCmd, taskCmd, runCmd)
	return root
}

func getJSON(out io.Writer, url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	_, err = fmt.Fprintln(out, string(bytes.TrimSpace(body)))
	return err
}

func runProcess(out io.Writer, server, path, model string, scale int, skipAlpha bool, resizeTo string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("scale", strconv.Itoa(scale))
	_ = mw.WriteField("model", model)
	_ = mw.WriteField("isSkipAlpha", strconv.FormatBool(skipAlpha))
	if resizeTo != "" {
		_ = mw.WriteField("resizeTo", resizeTo)
	}
	fw, err := mw.CreateFormFile("image", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	resp, err := http.Post(server+"/run_process", mw.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	_, err = fmt.Fprintln(out, string(bytes.TrimSpace(body)))
	return err
}
