package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tropicaldog17/dealwatch/internal/config"
	apperrors "github.com/tropicaldog17/dealwatch/internal/errors"
	"github.com/tropicaldog17/dealwatch/internal/models"
	"github.com/tropicaldog17/dealwatch/internal/scheduler"
	"github.com/tropicaldog17/dealwatch/internal/services"
)

var errUsage = errors.New("usage")

type app struct {
	cfg    *config.Config
	log    *zap.Logger
	client services.BackendClient
	trends services.TrendService
	alerts services.AlertService
	out    io.Writer

	outMu sync.Mutex // the watcher reports from cron goroutines
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "products":
		return a.products(ctx, rest)
	case "trend":
		return a.trend(ctx, rest)
	case "alert":
		return a.alert(ctx, rest)
	case "block", "unblock":
		if len(rest) != 1 {
			return errUsage
		}
		if cmd == "block" {
			return a.client.BlockProduct(ctx, rest[0])
		}
		return a.client.UnblockProduct(ctx, rest[0])
	case "blocked":
		products, err := a.client.ListBlockedProducts(ctx)
		if err != nil {
			return err
		}
		return a.printProducts(products)
	case "status":
		return a.status(ctx)
	case "test-push":
		if a.cfg.API.UserKey == "" {
			return &apperrors.ErrValidation{Field: "user_key", Code: "EMPTY", Message: "set api.user_key or DEALWATCH_USER_KEY first"}
		}
		if err := a.client.TestPush(ctx, a.cfg.API.UserKey); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "测试通知已发送")
		return nil
	case "watch":
		return a.watch(ctx, rest)
	default:
		return errUsage
	}
}

func (a *app) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	filter := &models.ProductFilter{}
	fs.StringVar(&filter.Keyword, "keyword", "", "search keyword")
	fs.StringVar(&filter.Platform, "platform", "", "platform name")
	fs.StringVar(&filter.Region, "region", "", "region name")
	fs.StringVar(&filter.SalesStatus, "sales", "", "1 on sale, 0 sold out")
	fs.StringVar(&filter.MonitorStatus, "monitor", "", "1 monitored, 0 not monitored")
	fs.BoolVar(&filter.RecentSevenDays, "recent", false, "only deals from the last seven days")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	products, err := a.client.ListProducts(ctx, filter)
	if err != nil {
		return err
	}
	return a.printProducts(products)
}

func (a *app) printProducts(products []*models.Product) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTIVITY\tPLATFORM\tREGION\tPRICE\tSTATUS\tALERT\tTITLE")
	for _, p := range products {
		alert := "-"
		if p.HasNotification && p.TargetPrice != nil {
			alert = "¥" + p.TargetPrice.StringFixed(2)
		}
		status := "已售罄"
		if p.IsOnSale() {
			status = "在售"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t¥%s\t%s\t%s\t%s\n",
			p.ActivityID, p.Platform, p.Region, p.CurrentPrice.StringFixed(2), status, alert, p.Title)
	}
	return tw.Flush()
}

// findProduct looks the product up in the listing; the backend has no single-product endpoint.
func (a *app) findProduct(ctx context.Context, activityID string) (*models.Product, error) {
	products, err := a.client.ListProducts(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ActivityID == activityID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("product %s not found", activityID)
}

func (a *app) trend(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("trend", flag.ContinueOnError)
	priceFlag := fs.String("price", "", "current price (looked up when empty)")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}
	activityID := fs.Arg(0)

	var price decimal.Decimal
	if *priceFlag != "" {
		p, ok := models.ParsePriceText(*priceFlag)
		if !ok {
			return &apperrors.ErrValidation{Field: "price", Code: "INVALID_NUMBER", Message: "price must be a plain decimal"}
		}
		price = p
	} else {
		p, err := a.findProduct(ctx, activityID)
		if err != nil {
			return err
		}
		price = p.CurrentPrice
	}

	view, err := a.trends.GetTrendView(ctx, activityID, price)
	if err != nil {
		return err
	}
	a.printTrend(activityID, view)
	return nil
}

func (a *app) printTrend(activityID string, view *models.TrendView) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	if view.State != models.TrendReady {
		fmt.Fprintf(a.out, "%s: 暂无价格趋势数据\n", activityID)
		return
	}
	for _, o := range view.Series {
		fmt.Fprintf(a.out, "%s  ¥%s\n", o.Date.Format("01-02"), o.Price.StringFixed(2))
	}
	s := view.Stats
	fmt.Fprintf(a.out, "最低 ¥%s  最高 ¥%s  变化 %s\n",
		s.MinPrice.StringFixed(2), s.MaxPrice.StringFixed(2), s.LatestChange.StringFixed(2))
	if s.TodayDiscountPercent != nil {
		fmt.Fprintf(a.out, "今日最高 ¥%s，现价低 %s%%\n",
			s.TodayPeakPrice.StringFixed(2), s.TodayDiscountPercent.StringFixed(0))
	}
}

func (a *app) alert(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	action, activityID := args[0], args[1]
	if action == "delete" {
		if err := a.alerts.Remove(ctx, activityID); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "监控已取消")
		return nil
	}
	if action != "set" && action != "edit" {
		return errUsage
	}
	isEdit := action == "edit"

	fs := flag.NewFlagSet("alert", flag.ContinueOnError)
	priceText := fs.String("price", "", "target price")
	slider := fs.Int("slider", 0, "target as percent of the current price")
	preset := fs.String("preset", "", "discount preset: 0.1, 0.2, 0.3 or 0.5")
	if err := fs.Parse(args[2:]); err != nil {
		return errUsage
	}

	product, err := a.findProduct(ctx, activityID)
	if err != nil {
		return err
	}

	state := a.alerts.Editor(product, isEdit)
	switch {
	case *priceText != "":
		state = state.Apply(models.TextEdit{Text: *priceText})
	case *slider != 0:
		state = state.Apply(models.SliderEdit{Percent: *slider})
	case *preset != "":
		d, ok := models.ParsePriceText(*preset)
		if !ok || !isPreset(d) {
			return &apperrors.ErrValidation{Field: "preset", Code: "INVALID_NUMBER", Message: "preset must be 0.1, 0.2, 0.3 or 0.5"}
		}
		state = state.Apply(models.PresetEdit{Discount: d})
	}

	if err := a.alerts.Submit(ctx, product, state, isEdit); err != nil {
		return err
	}
	savings := state.Savings()
	fmt.Fprintf(a.out, "目标价 ¥%s，比现价低 ¥%s (-%s%%)\n",
		state.Value.StringFixed(2), savings.Amount.StringFixed(2), savings.Percent.StringFixed(0))
	if isEdit {
		fmt.Fprintln(a.out, "监控设置已更新")
	} else {
		fmt.Fprintln(a.out, "监控已设置")
	}
	return nil
}

func isPreset(d decimal.Decimal) bool {
	for _, p := range models.DiscountPresets {
		if p.Discount.Equal(d) {
			return true
		}
	}
	return false
}

func (a *app) status(ctx context.Context) error {
	st, err := a.client.GetSystemStatus(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "sync: %s (healthy=%t, products=%d, last run %s)\nserver time: %s\n",
		st.Sync.Status, st.Sync.IsHealthy, st.Sync.ProductCount, st.Sync.LastRunTime, st.ServerTime)
	if st.Sync.ErrorMessage != "" {
		fmt.Fprintln(a.out, "error:", st.Sync.ErrorMessage)
	}
	return nil
}

func (a *app) watch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	spec := fs.String("cron", a.cfg.Watch.Cron, "six-field cron schedule")
	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		return errUsage
	}

	lookup := func(ctx context.Context, activityID string) (decimal.Decimal, error) {
		p, err := a.findProduct(ctx, activityID)
		if err != nil {
			return decimal.Zero, err
		}
		return p.CurrentPrice, nil
	}
	w := scheduler.NewTrendWatcher(ctx, a.trends, lookup, a.printTrend, a.log)
	for _, id := range fs.Args() {
		if err := w.Watch(*spec, id); err != nil {
			return err
		}
	}

	w.RunNow()
	w.Start()
	<-ctx.Done()
	w.Stop()
	return nil
}
