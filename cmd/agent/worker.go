package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/worker"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/remote"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Manage workers",
}

var workerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a worker",
	Example: `  agent worker add --name "Ravi Kumar" --labour-type Mason --daily-wage 650 \
    --phone 9876543210 --upi ravi.k@okaxis --project <project-id>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		req, err := workerRequestFromFlags(cmd)
		if err != nil {
			return err
		}

		app.probe(ctx)
		if err := uploadWorkerPhoto(cmd, &req); err != nil {
			return err
		}

		created, err := app.workers.Create(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(cmd, created)
	},
}

var workerUpdateCmd = &cobra.Command{
	Use:   "update <worker-id>",
	Short: "Replace a worker's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		req, err := workerRequestFromFlags(cmd)
		if err != nil {
			return err
		}

		app.probe(ctx)
		if err := uploadWorkerPhoto(cmd, &req); err != nil {
			return err
		}

		updated, err := app.workers.Update(ctx, worker.UpdateWorkerRequest{ID: args[0], CreateWorkerRequest: req})
		if err != nil {
			return err
		}
		return printJSON(cmd, updated)
	},
}

var workerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		workers, err := app.workers.List(cmd.Context(), worker.WorkerFilter{
			ProjectID: optionalString(cmd, "project"),
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, workers)
	},
}

var workerDeactivateCmd = &cobra.Command{
	Use:   "deactivate <worker-id>",
	Short: "Soft delete a worker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app.probe(ctx)

		w, err := app.workers.Deactivate(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, w)
	},
}

func workerRequestFromFlags(cmd *cobra.Command) (worker.CreateWorkerRequest, error) {
	name, _ := cmd.Flags().GetString("name")
	labourType, _ := cmd.Flags().GetString("labour-type")
	rawWage, _ := cmd.Flags().GetString("daily-wage")

	dailyWage, err := decimal.NewFromString(rawWage)
	if err != nil {
		return worker.CreateWorkerRequest{}, fmt.Errorf("invalid --daily-wage: %w", err)
	}
	hourlyRate, err := optionalDecimal(cmd, "hourly-rate")
	if err != nil {
		return worker.CreateWorkerRequest{}, err
	}

	return worker.CreateWorkerRequest{
		Name:        name,
		LabourType:  labourType,
		PhoneNumber: optionalString(cmd, "phone"),
		AadhaarID:   optionalString(cmd, "aadhaar"),
		DailyWage:   dailyWage,
		HourlyRate:  hourlyRate,
		UPIID:       optionalString(cmd, "upi"),
		ProjectID:   optionalString(cmd, "project"),
	}, nil
}

// photoUploader is satisfied by remote.Client.
type photoUploader interface {
	UploadPhoto(ctx context.Context, filename, contentType string, r io.Reader) (remote.PhotoUpload, error)
}

func uploadWorkerPhoto(cmd *cobra.Command, req *worker.CreateWorkerRequest) error {
	photoPath, _ := cmd.Flags().GetString("photo")
	return attachPhoto(cmd.Context(), app.log, app.monitor.Online(), app.client, photoPath, req)
}

// attachPhoto uploads photoPath and stores the returned URL on req. Photos are
// not queued: when the server cannot be reached the worker is saved without
// one and the photo can be added later with "worker update".
func attachPhoto(ctx context.Context, log *slog.Logger, online bool, up photoUploader, photoPath string, req *worker.CreateWorkerRequest) error {
	if photoPath == "" {
		return nil
	}

	f, err := os.Open(photoPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if !online {
		log.Warn("Remote server unreachable, saving worker without photo", "photo", photoPath)
		return nil
	}

	contentType := mime.TypeByExtension(filepath.Ext(photoPath))
	uploaded, err := up.UploadPhoto(ctx, filepath.Base(photoPath), contentType, f)
	if errors.Is(err, remote.ErrUnavailable) {
		log.Warn("Photo upload failed, saving worker without photo", "photo", photoPath, "error", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to upload photo: %w", err)
	}
	req.PhotoURL = &uploaded.PhotoURL
	return nil
}

func addWorkerFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Full name")
	cmd.Flags().String("labour-type", string(worker.LabourTypeGeneralLabour), "Mason, Helper, Electrician, Plumber, Carpenter, Welder, Painter, Driver, Supervisor or General Labour")
	cmd.Flags().String("daily-wage", "", "Daily wage")
	cmd.Flags().String("hourly-rate", "", "Hourly rate")
	cmd.Flags().String("phone", "", "10 digit mobile number")
	cmd.Flags().String("aadhaar", "", "12 digit Aadhaar number")
	cmd.Flags().String("upi", "", "UPI id, e.g. name@bank")
	cmd.Flags().String("project", "", "Assigned project id")
	cmd.Flags().String("photo", "", "Path to a photo to upload")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("daily-wage")
}

func init() {
	addWorkerFlags(workerAddCmd)
	addWorkerFlags(workerUpdateCmd)
	workerListCmd.Flags().String("project", "", "Only workers assigned to this project")

	workerCmd.AddCommand(workerAddCmd, workerUpdateCmd, workerListCmd, workerDeactivateCmd)
	rootCmd.AddCommand(workerCmd)
}
