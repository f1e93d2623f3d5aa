package service

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/bwmarrin/snowflake"
	foremandomain "github.com/groundworklabs/groundwork/internal/foreman/domain"
	foremanservice "github.com/groundworklabs/groundwork/internal/foreman/service"
	payrolldomain "github.com/groundworklabs/groundwork/internal/payroll/domain"
	ratecarddomain "github.com/groundworklabs/groundwork/internal/ratecard/domain"
	ratingdomain "github.com/groundworklabs/groundwork/internal/rating/domain"
	"github.com/shopspring/decimal"
)

// WorkerDraft is one worker's aggregate before persistence.
type WorkerDraft struct {
	WorkerID   snowflake.ID
	WorkerName string
	WorkerRole string
	Total      decimal.Decimal
	JobCount   int
	FootageFt  decimal.Decimal
	Breakdown  payrolldomain.Breakdown
}

// InvestorDraft is one (investor, equipment) aggregate before
// persistence.
type InvestorDraft struct {
	InvestorID   snowflake.ID
	InvestorName string
	EquipmentID  snowflake.ID
	Total        decimal.Decimal
	JobCount     int
	Breakdown    payrolldomain.Breakdown
}

// BuildAggregates is the pure assembly step: given the period's
// earnings snapshots and foreman daily entries, it produces one draft
// per worker and per (investor, equipment) pair. Persistence is a
// separate replace-by-natural-key step, so this stays testable without
// a database.
func BuildAggregates(
	calcs []ratingdomain.CalculatedTotal,
	foremanEntries []foremandomain.DailyEntry,
) ([]WorkerDraft, []InvestorDraft, error) {
	workers := make(map[snowflake.ID]*WorkerDraft)
	investors := make(map[string]*InvestorDraft)

	for _, calc := range calcs {
		var frozen ratingdomain.FrozenContext
		if err := json.Unmarshal(calc.Context, &frozen); err != nil {
			return nil, nil, fmt.Errorf("decode frozen context for %s: %w", calc.ID, err)
		}
		var lines []ratingdomain.LineResult
		if err := json.Unmarshal(calc.Lines, &lines); err != nil {
			return nil, nil, fmt.Errorf("decode line detail for %s: %w", calc.ID, err)
		}

		if workerID, err := parseID(frozen.WorkerID); err == nil {
			draft := workers[workerID]
			if draft == nil {
				role := frozen.WorkerRole
				if role == "" {
					role = "crew"
				}
				draft = &WorkerDraft{
					WorkerID:   workerID,
					WorkerName: frozen.WorkerName,
					WorkerRole: role,
				}
				workers[workerID] = draft
			}

			draft.Total = draft.Total.Add(calc.WorkerTotal)
			draft.JobCount++
			draft.Breakdown.ByJob = append(draft.Breakdown.ByJob, payrolldomain.JobBreakdown{
				JobRef: calc.JobRef,
				Amount: calc.WorkerTotal,
			})
			for _, line := range lines {
				mergeWorkType(&draft.Breakdown, line.Code, line.Quantity, line.WorkerAmount)
				if line.Unit == string(ratecarddomain.UnitLength) {
					draft.FootageFt = draft.FootageFt.Add(line.Quantity)
				}
			}
		}

		investorID, invErr := parseID(frozen.InvestorID)
		equipmentID, eqErr := parseID(frozen.EquipmentID)
		if invErr == nil && eqErr == nil && calc.InvestorTotal.IsPositive() {
			key := frozen.InvestorID + "/" + frozen.EquipmentID
			draft := investors[key]
			if draft == nil {
				draft = &InvestorDraft{
					InvestorID:   investorID,
					InvestorName: frozen.InvestorName,
					EquipmentID:  equipmentID,
				}
				investors[key] = draft
			}
			draft.Total = draft.Total.Add(calc.InvestorTotal)
			draft.JobCount++
			draft.Breakdown.ByJob = append(draft.Breakdown.ByJob, payrolldomain.JobBreakdown{
				JobRef: calc.JobRef,
				Amount: calc.InvestorTotal,
			})
		}
	}

	// Foreman pay rides on the same record as any catalog-rated work
	// the worker did that week.
	byWorker := make(map[snowflake.ID][]foremandomain.DailyEntry)
	for _, entry := range foremanEntries {
		byWorker[entry.WorkerID] = append(byWorker[entry.WorkerID], entry)
	}
	for workerID, entries := range byWorker {
		details := foremanservice.CalculateWeekPay(entries)

		draft := workers[workerID]
		if draft == nil {
			draft = &WorkerDraft{WorkerID: workerID, WorkerName: entries[0].WorkerName}
			workers[workerID] = draft
		}
		draft.WorkerRole = "foreman"
		draft.Total = draft.Total.Add(details.TotalPay)
		draft.FootageFt = draft.FootageFt.Add(details.FootageFt)
		draft.Breakdown.Foreman = &details
	}

	workerDrafts := make([]WorkerDraft, 0, len(workers))
	for _, draft := range workers {
		workerDrafts = append(workerDrafts, *draft)
	}
	sort.Slice(workerDrafts, func(i, j int) bool { return workerDrafts[i].WorkerID < workerDrafts[j].WorkerID })

	investorDrafts := make([]InvestorDraft, 0, len(investors))
	for _, draft := range investors {
		investorDrafts = append(investorDrafts, *draft)
	}
	sort.Slice(investorDrafts, func(i, j int) bool {
		if investorDrafts[i].InvestorID != investorDrafts[j].InvestorID {
			return investorDrafts[i].InvestorID < investorDrafts[j].InvestorID
		}
		return investorDrafts[i].EquipmentID < investorDrafts[j].EquipmentID
	})

	return workerDrafts, investorDrafts, nil
}

func mergeWorkType(b *payrolldomain.Breakdown, code string, qty, amount decimal.Decimal) {
	for i := range b.ByWorkType {
		if b.ByWorkType[i].Code == code {
			b.ByWorkType[i].Quantity = b.ByWorkType[i].Quantity.Add(qty)
			b.ByWorkType[i].Amount = b.ByWorkType[i].Amount.Add(amount)
			return
		}
	}
	b.ByWorkType = append(b.ByWorkType, payrolldomain.WorkTypeBreakdown{
		Code:     code,
		Quantity: qty,
		Amount:   amount,
	})
}

func parseID(value string) (snowflake.ID, error) {
	if value == "" {
		return 0, fmt.Errorf("empty id")
	}
	return snowflake.ParseString(value)
}
