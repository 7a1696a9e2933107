package commands

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

// NewImageCmd creates the image command
func NewImageCmd(appFn AppFunc) *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "image <product-id>",
		Short: "Open a product image in the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(appFn)
			if err != nil {
				return err
			}

			product, err := a.Client.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if product.Image.URL == "" {
				return fmt.Errorf("product '%s' has no image", product.Name)
			}

			imageURL := assetURL(a.Config.BaseURL(), product.Image.URL)
			fmt.Fprintf(a.Out, "URL: %s\n", imageURL)
			if printOnly {
				return nil
			}

			if err := openBrowser(imageURL); err != nil {
				return fmt.Errorf("failed to open browser: %w\nPlease visit: %s", err, imageURL)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the URL without opening a browser")

	return cmd
}

// assetURL resolves an uploaded file path against the deployment root.
func assetURL(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
