// Command bookingctl drives a booking from the terminal through the same
// client pipeline a booking page uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	api "carrental-backend/internal/api/grpc"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/lifecycle"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/pipeline"
	"carrental-backend/internal/utils"
)

func main() {
	target := flag.String("target", "localhost:50051", "gRPC address of the booking server")
	token := flag.String("token", os.Getenv("BOOKINGCTL_TOKEN"), "Access token (defaults to $BOOKINGCTL_TOKEN)")
	userID := flag.Int("user", 0, "Your user id")
	bookingNumber := flag.String("booking", "", "Booking number")
	action := flag.String("action", "", "Action key to open and submit, e.g. owner_accept_return")
	note := flag.String("note", "", "Note recorded with the action")
	evidence := flag.String("evidence", "", "Path of an evidence picture to upload")
	charge := flag.Int64("charge", -1, "Extra charge in cents (owner_accept_return)")
	showSettlement := flag.Bool("settlement", false, "Print the settlement")
	redisAddr := flag.String("redis", "", "Redis address for remembering opened deep links")
	flag.Parse()

	logger.Initialize("warn", "text", "bookingctl")
	if *bookingNumber == "" || *token == "" || *userID == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := api.Dial(*target, *token)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	var consumed pipeline.ConsumedKeyStore = pipeline.NewMemoryConsumedKeys()
	if *redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		defer rdb.Close()
		consumed = pipeline.NewRedisConsumedKeys(rdb, 0)
	}

	exec := pipeline.NewExecutor(client, pipeline.NotifierFunc(printNotice), lifecycle.NewResolver())

	first, err := exec.Refetch(ctx, *bookingNumber)
	if err != nil {
		log.Fatalf("Failed to load booking: %v", err)
	}
	viewer := domain.Viewer{Role: first.ViewerRole, ID: int32(*userID)}
	view := exec.NewView(viewer, *bookingNumber, consumed, func(key domain.ActionKey) {
		fmt.Printf("Opened %s\n", key)
	})

	if *action != "" {
		if err := view.RequestAction(ctx, domain.ActionKey(*action)); err != nil {
			log.Fatalf("Failed to request action: %v", err)
		}
	}
	if err := view.Load(ctx); err != nil {
		log.Fatalf("Failed to load booking: %v", err)
	}

	if *action != "" {
		dialog := view.Dialog()
		if dialog == nil {
			fmt.Fprintf(os.Stderr, "%s is not available to you on %s (or was already opened from this link)\n", *action, *bookingNumber)
			os.Exit(1)
		}
		form := pipeline.Form{Note: *note}
		if *evidence != "" {
			key, err := uploadEvidence(ctx, client, *bookingNumber, *evidence)
			if err != nil {
				log.Fatalf("Evidence upload failed: %v", err)
			}
			form.EvidenceURL = key
		}
		if *charge >= 0 {
			form.ChargeCents = charge
		}
		if err := dialog.Submit(ctx, form); err != nil {
			os.Exit(1)
		}
	}

	printBooking(view)

	if *showSettlement {
		s, err := exec.Settlement(ctx, *bookingNumber)
		if err != nil {
			os.Exit(1)
		}
		printSettlement(s)
	}
}

func printNotice(n domain.Notice) {
	line := fmt.Sprintf("[%s] %s", strings.ToUpper(string(n.Kind)), n.Title)
	if n.Message != "" {
		line += ": " + n.Message
	}
	fmt.Println(line)
}

func uploadEvidence(ctx context.Context, client *api.Client, bookingNumber, path string) (string, error) {
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	slot, err := client.RequestEvidenceUpload(ctx, bookingNumber, filepath.Base(path), contentType)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, slot.UploadURL, f)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload rejected: %s", resp.Status)
	}
	return slot.Key, nil
}

func printBooking(view *pipeline.View) {
	detail := view.Detail()
	b := detail.Booking
	fmt.Printf("\nBooking %s  status=%s  you=%s\n", b.BookingNumber, b.Status, detail.ViewerRole)
	fmt.Printf("Pickup %s  Dropoff %s\n", b.PickupTime.Format(time.RFC3339), b.DropoffTime.Format(time.RFC3339))

	fmt.Println("\nTimeline:")
	for _, e := range view.Timeline() {
		fmt.Printf("  %s  %s -> %s", e.ChangedAt.Format(time.RFC3339), e.PreviousStatus, e.NewStatus)
		if e.Note != "" {
			fmt.Printf("  %q", e.Note)
		}
		if e.PictureURL != "" {
			fmt.Printf("  picture: %s", e.PictureURL)
		}
		fmt.Println()
	}

	fmt.Println("\nActions:")
	if len(detail.Actions) == 0 {
		fmt.Println("  (none)")
	}
	for _, a := range detail.Actions {
		state := ""
		if a.Disabled {
			state = "  [disabled: " + a.DisabledReason + "]"
		}
		fmt.Printf("  %-26s %s%s\n", a.Key, a.Label, state)
	}
}

func printSettlement(s *domain.SettlementSnapshot) {
	fmt.Println("\nSettlement:")
	rows := []struct {
		label string
		cents int64
	}{
		{"Base price", s.BasePriceCents},
		{"Extra km fee", s.ExtraKmFeeCents},
		{"Extra charges", s.ExtraChargesCents},
		{"Discount", s.DiscountCents},
		{"Total", s.TotalCalculatedCents},
		{"Deposit", s.DepositSnapshotCents},
		{"Remaining to charge", s.RemainingChargedCents},
		{"Refund to renter", s.RefundToRenterCents},
	}
	for _, r := range rows {
		fmt.Printf("  %-20s %12s\n", r.label, utils.FormatCents(r.cents))
	}
	if !s.RevenueDistributed {
		fmt.Println("  no revenue distributed")
		return
	}
	fmt.Printf("  %-20s %12s\n", "Owner share", utils.FormatCents(s.OwnerShareFromDepositCents+s.OwnerShareFromRemainingCents))
	fmt.Printf("  %-20s %12s\n", "Platform share", utils.FormatCents(s.AdminShareFromDepositCents+s.AdminShareFromRemainingCents))
}
