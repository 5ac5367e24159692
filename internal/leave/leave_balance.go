package leave

// AnnualEntitlement is the fixed number of leave days granted per calendar year.
const AnnualEntitlement = 21

type Balance struct {
	Year           int
	Entitlement    int
	UsedDays       int
	Available      int
	PendingCount   int
	ApprovedCount  int
	RejectedCount  int
	CancelledCount int
}

// CalculateBalance derives the remaining entitlement for year from an
// employee's leave history. Only records starting within year are counted;
// only Approved ones consume days. Available never drops below zero.
func CalculateBalance(records []Leave, year int) Balance {
	b := Balance{Year: year, Entitlement: AnnualEntitlement}

	for _, l := range records {
		if l.StartDate.Year() != year {
			continue
		}
		switch l.Status {
		case StatusPending:
			b.PendingCount++
		case StatusApproved:
			b.ApprovedCount++
			b.UsedDays += DayCount(l.StartDate, l.EndDate)
		case StatusRejected:
			b.RejectedCount++
		case StatusCancelled:
			b.CancelledCount++
		}
	}

	b.Available = b.Entitlement - b.UsedDays
	if b.Available < 0 {
		b.Available = 0
	}
	return b
}
