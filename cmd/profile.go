package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/trainerhub/poketrainer/internal"
)

var (
	profileOut     string
	profileRefresh bool
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Generate your trainer profile image",
	Long: `Render your trainer profile card on the backend and save it to a file.

With cookie consent accepted the image is cached for 7 days and reused until a
purchase, a profile picture change or a logout. Use --refresh to regenerate.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.guard.RequireUser(cmd.Context()).Error(); err != nil {
			return err
		}

		data, contentType, cached := a.images.Load()
		if profileRefresh || !cached {
			var err error
			err = internal.ShowProgress(cmd.Context(), "Generating profile", func(ctx context.Context) error {
				data, contentType, err = a.client.GenerateProfile(ctx)
				return err
			})
			if err != nil {
				return fmt.Errorf("failed to generate profile: %w", err)
			}
			if err := a.images.Store(data, contentType); err != nil {
				internal.LogWarn("%v", err)
			}
		} else {
			internal.LogDebug("Using cached profile image")
		}

		path, err := writeImage(profileOut, "profile", contentType, data)
		if err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Profile saved to "+path)
		if a.images.Consent() == "" {
			internal.PrintInfo(cmd.OutOrStdout(), "Run 'poketrainer consent accept' to cache the profile image")
		}
		return nil
	}),
}

var pfpCmd = &cobra.Command{
	Use:   "pfp",
	Short: "Manage your profile picture",
}

var pfpGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Download your profile picture",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.guard.RequireUser(cmd.Context()).Error(); err != nil {
			return err
		}

		var (
			data        []byte
			contentType string
		)
		err := internal.ShowProgress(cmd.Context(), "Downloading profile picture", func(ctx context.Context) error {
			var err error
			data, contentType, err = a.client.ProfilePicture(ctx)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to download profile picture: %w", err)
		}

		path, err := writeImage(profileOut, "pfp", contentType, data)
		if err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Profile picture saved to "+path)
		return nil
	}),
}

var pfpUploadCmd = &cobra.Command{
	Use:   "upload <image>",
	Short: "Replace your profile picture",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		if err := a.guard.RequireUser(cmd.Context()).Error(); err != nil {
			return err
		}

		err = internal.ShowProgress(cmd.Context(), "Uploading profile picture", func(ctx context.Context) error {
			return a.client.UploadProfilePicture(ctx, filepath.Base(args[0]), data)
		})
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
		a.dropProfileImage()
		internal.PrintSuccess(cmd.OutOrStdout(), "Profile picture updated")
		return nil
	}),
}

var pfpDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove your profile picture",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.guard.RequireUser(cmd.Context()).Error(); err != nil {
			return err
		}
		err := internal.ShowProgress(cmd.Context(), "Removing profile picture", a.client.DeleteProfilePicture)
		if err != nil {
			return fmt.Errorf("failed to remove profile picture: %w", err)
		}
		a.dropProfileImage()
		internal.PrintSuccess(cmd.OutOrStdout(), "Profile picture removed")
		return nil
	}),
}

var consentCmd = &cobra.Command{
	Use:       "consent [accept|decline|status]",
	Short:     "Manage cookie consent for local image caching",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"accept", "decline", "status"},
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		action := "status"
		if len(args) == 1 {
			action = args[0]
		}

		out := cmd.OutOrStdout()
		switch action {
		case "accept", "decline":
			if err := a.images.SetConsent(action == "accept"); err != nil {
				return err
			}
			internal.PrintSuccess(out, "Consent "+a.images.Consent())
		case "status":
			consent := a.images.Consent()
			if consent == "" {
				consent = "not set"
			}
			fmt.Fprintf(out, "Cookie consent: %s\n", consent)
		default:
			return fmt.Errorf("unknown consent action %q, want accept, decline or status", action)
		}
		return nil
	}),
}

// writeImage writes data to path, or to base plus an extension derived from contentType
func writeImage(path, base, contentType string, data []byte) (string, error) {
	if path == "" {
		path = base + imageExt(contentType)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}

func imageExt(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	switch strings.TrimSpace(mediaType) {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".img"
	}
}

func init() {
	rootCmd.AddCommand(profileCmd, pfpCmd, consentCmd)
	pfpCmd.AddCommand(pfpGetCmd, pfpUploadCmd, pfpDeleteCmd)

	profileCmd.Flags().StringVarP(&profileOut, "out", "o", "", "Output file (default profile.<ext>)")
	profileCmd.Flags().BoolVar(&profileRefresh, "refresh", false, "Ignore the cached image")
	pfpGetCmd.Flags().StringVarP(&profileOut, "out", "o", "", "Output file (default pfp.<ext>)")
}
