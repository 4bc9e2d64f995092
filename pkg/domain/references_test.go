package domain

import "testing"

func TestValidateReferences(t *testing.T) {
	set := ReferenceSet{
		Businesses: []BusinessProfile{{ID: "biz_1", Products: []Product{{ID: "prd_1"}}}},
		Customers:  []Customer{{ID: "cus_1", BusinessID: "biz_1"}, {ID: "cus_2", BusinessID: "biz_gone"}},
		Orders: []Order{
			{ID: "ord_1", BusinessID: "biz_1", CustomerID: "cus_1", Items: []OrderItem{{ProductID: "prd_1"}, {ProductID: "prd_9"}}},
		},
		Transactions: []Transaction{{ID: "txn_1", BusinessID: "biz_1", OrderID: "ord_9"}},
		Tickets:      []Ticket{{ID: "tkt_1", BusinessID: "biz_1", CustomerID: "cus_9"}},
		Tasks:        []Task{{ID: "tsk_1"}},
	}
	got := ValidateReferences(set)
	want := []DanglingReference{
		{From: EntityCustomer, FromID: "cus_2", Field: "business_id", Target: EntityBusiness, TargetID: "biz_gone"},
		{From: EntityOrder, FromID: "ord_1", Field: "items.product_id", Target: EntityProduct, TargetID: "prd_9"},
		{From: EntityTicket, FromID: "tkt_1", Field: "customer_id", Target: EntityCustomer, TargetID: "cus_9"},
		{From: EntityTransaction, FromID: "txn_1", Field: "order_id", Target: EntityOrder, TargetID: "ord_9"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d references, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("reference %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestValidateReferencesEmpty(t *testing.T) {
	if refs := ValidateReferences(ReferenceSet{}); len(refs) != 0 {
		t.Fatalf("unexpected references: %+v", refs)
	}
}
