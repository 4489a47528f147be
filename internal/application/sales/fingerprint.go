package sales

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// RequestFingerprint digests the shape of a create-sale request so a retry
// with the same client sale id but a different cart can be told apart from a
// faithful resubmission. Item, selection, extra, and payment order do not
// affect the digest.
func RequestFingerprint(req CreateSaleRequest) string {
	type selectionKey struct {
		GroupKey     string `json:"g"`
		OptionItemID string `json:"o"`
	}
	type extraKey struct {
		ExtraID  string `json:"e"`
		Quantity int64  `json:"q"`
	}
	type itemKey struct {
		ProductID  string         `json:"p"`
		Quantity   int64          `json:"q"`
		Selections []selectionKey `json:"s,omitempty"`
		Extras     []extraKey     `json:"x,omitempty"`
	}
	type paymentKey struct {
		Method string `json:"m"`
		Amount string `json:"a"`
	}

	items := make([]itemKey, 0, len(req.Items))
	for _, item := range req.Items {
		ik := itemKey{ProductID: item.ProductID.String(), Quantity: item.Quantity}
		for _, sel := range item.Selections {
			ik.Selections = append(ik.Selections, selectionKey{GroupKey: sel.GroupKey, OptionItemID: sel.OptionItemID.String()})
		}
		sort.Slice(ik.Selections, func(i, j int) bool {
			if ik.Selections[i].GroupKey != ik.Selections[j].GroupKey {
				return ik.Selections[i].GroupKey < ik.Selections[j].GroupKey
			}
			return ik.Selections[i].OptionItemID < ik.Selections[j].OptionItemID
		})
		for _, extra := range item.Extras {
			ik.Extras = append(ik.Extras, extraKey{ExtraID: extra.ExtraID.String(), Quantity: extra.Quantity})
		}
		sort.Slice(ik.Extras, func(i, j int) bool { return ik.Extras[i].ExtraID < ik.Extras[j].ExtraID })
		items = append(items, ik)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	payments := make([]paymentKey, 0, len(req.Payments))
	for _, p := range req.Payments {
		payments = append(payments, paymentKey{Method: p.Method, Amount: p.Amount.String()})
	}
	sort.Slice(payments, func(i, j int) bool {
		if payments[i].Method != payments[j].Method {
			return payments[i].Method < payments[j].Method
		}
		return payments[i].Amount < payments[j].Amount
	})

	payload, _ := json.Marshal(struct {
		StoreID  string       `json:"store"`
		Items    []itemKey    `json:"items"`
		Payments []paymentKey `json:"payments"`
	}{
		StoreID:  req.StoreID.String(),
		Items:    items,
		Payments: payments,
	})

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
