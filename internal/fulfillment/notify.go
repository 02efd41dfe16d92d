package fulfillment

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	orderdomain "github.com/nightmarket/aestore/internal/order/domain"
	pendingdomain "github.com/nightmarket/aestore/internal/pendingpayment/domain"
	"github.com/nightmarket/aestore/internal/providers/email"
	"go.uber.org/zap"
)

var confirmationTmpl = template.Must(template.New("order_confirmation").Parse(`
<h2>Thank you for your purchase!</h2>
<p>Order <strong>{{.OrderID}}</strong> is confirmed.</p>
<table>
{{range .Items}}<tr><td>{{.PackageName}}</td><td>x{{.Quantity}}</td></tr>
{{end}}</table>
<p>Your redemption codes:</p>
<ul>
{{range .Codes}}<li><code>{{.Code}}</code> ({{.AecoinAmount}} AECOIN)</li>
{{end}}</ul>
<p>Redeem in game with <code>/redeemcode &lt;code&gt;</code>.</p>
<p>Total paid: {{.Total}}</p>
`))

type confirmationData struct {
	OrderID string
	Items   []pendingdomain.SnapshotItem
	Codes   []orderdomain.RedemptionCode
	Total   string
}

// notify emails the buyer their codes. Failures are logged and counted,
// never propagated; the codes stay visible in order history.
func (s *service) notify(ctx context.Context, order *orderdomain.Order, items []pendingdomain.SnapshotItem, codes []orderdomain.RedemptionCode) {
	buyer, err := s.users.FindByID(ctx, s.db, order.UserID)
	if err != nil || buyer == nil || buyer.Email == "" {
		s.metrics.ProvisioningFailures.WithLabelValues("email").Inc()
		s.log.Warn("confirmation email skipped, no recipient",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return
	}

	var body strings.Builder
	err = confirmationTmpl.Execute(&body, confirmationData{
		OrderID: order.ID.String(),
		Items:   items,
		Codes:   codes,
		Total:   formatAmount(order.TotalAmount, order.Currency),
	})
	if err != nil {
		s.metrics.ProvisioningFailures.WithLabelValues("email").Inc()
		s.log.Error("confirmation email render failed", zap.Error(err))
		return
	}

	if err := s.email.Send(ctx, email.Message{
		To:      buyer.Email,
		Subject: fmt.Sprintf("Your AECOIN order %s", order.ID.String()),
		HTML:    body.String(),
	}); err != nil {
		s.metrics.ProvisioningFailures.WithLabelValues("email").Inc()
		s.log.Error("confirmation email send failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

func formatAmount(minor int64, currency string) string {
	return fmt.Sprintf("%s %d.%02d", currency, minor/100, minor%100)
}
