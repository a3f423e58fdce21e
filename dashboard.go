package main

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type ViewMode string

const (
	ViewAdmin  ViewMode = "admin"
	ViewDriver ViewMode = "driver"
)

type Section string

const (
	SectionOverview  Section = "overview"
	SectionPenalties Section = "penalties"
	SectionRewards   Section = "rewards"
)

type DashboardSnapshot struct {
	Mode         ViewMode           `json:"mode"`
	Section      Section            `json:"section"`
	SearchPlate  string             `json:"search_plate"`
	Profile      *FullProfile       `json:"profile"`
	ProfileError string             `json:"profile_error,omitempty"`
	RiskTone     string             `json:"risk_tone,omitempty"`
	History      []HistoryEntry     `json:"history"`
	Charts       []ChartConfig      `json:"charts"`
	Register     RegisterFormState  `json:"register"`
	Violation    ViolationFormState `json:"violation"`
}

// Dashboard is the state of one browser session: view mode, search plate,
// last fetched profile and the two forms.
type Dashboard struct {
	api          PenaltyAPI
	log          *zap.Logger
	registration *RegisterFlow
	violations   *ViolationFlow

	mu          sync.Mutex
	mode        ViewMode
	section     Section
	searchPlate string
	profile     *FullProfile
	profileErr  string
	searchSeq   uint64
}

func NewDashboard(api PenaltyAPI, dispatcher *Dispatcher, log *zap.Logger, statusTimeout time.Duration) *Dashboard {
	return &Dashboard{
		api:          api,
		log:          log,
		registration: NewRegisterFlow(api, log),
		violations:   NewViolationFlow(api, dispatcher, log, statusTimeout),
		mode:         ViewAdmin,
		section:      SectionOverview,
	}
}

func (d *Dashboard) SetView(mode, section string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if mode != "" {
		switch m := ViewMode(strings.ToLower(mode)); m {
		case ViewAdmin, ViewDriver:
			d.mode = m
		default:
			return &ValidationError{Message: "mode must be admin|driver"}
		}
	}
	if section != "" {
		switch s := Section(strings.ToLower(section)); s {
		case SectionOverview, SectionPenalties, SectionRewards:
			d.section = s
		default:
			return &ValidationError{Message: "section must be overview|penalties|rewards"}
		}
	}
	return nil
}

// Search looks up a plate and replaces the shown profile. An empty plate is a
// no-op. A failed lookup clears the shown profile.
func (d *Dashboard) Search(ctx context.Context, plate string) error {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return nil
	}

	d.mu.Lock()
	d.searchPlate = plate
	d.searchSeq++
	seq := d.searchSeq
	d.mu.Unlock()

	res := lookupProfile(ctx, d.api, plate)

	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.searchSeq {
		return res.err
	}
	d.profile = res.profile
	d.profileErr = res.message
	if res.err != nil {
		d.log.Info("profile lookup failed", zap.String("plate", plate), zap.Error(res.err))
	}
	return res.err
}

// Register submits the registration form; on success the new plate becomes
// the searched plate and its profile is fetched.
func (d *Dashboard) Register(ctx context.Context, reg VehicleRegistration) error {
	plate, err := d.registration.Submit(ctx, reg)
	if err != nil {
		return err
	}
	if err := d.Search(ctx, plate); err != nil {
		d.log.Warn("profile refresh after registration failed", zap.String("plate", plate), zap.Error(err))
	}
	return nil
}

// SubmitViolation records a violation. In driver view the plate is locked to
// the searched plate; in admin view it is free-typed.
func (d *Dashboard) SubmitViolation(ctx context.Context, plate, code string) (ViolationResult, error) {
	d.mu.Lock()
	locked := d.mode == ViewDriver
	if locked {
		plate = d.searchPlate
	}
	d.mu.Unlock()

	res, err := d.violations.Submit(ctx, ViolationInput{PlateNo: plate, ViolationCode: code, Locked: locked})
	if err != nil {
		return res, err
	}
	if err := d.Search(ctx, plate); err != nil {
		d.log.Warn("profile refresh after violation failed", zap.String("plate", plate), zap.Error(err))
	}
	return res, nil
}

func (d *Dashboard) Snapshot() DashboardSnapshot {
	d.mu.Lock()
	snap := DashboardSnapshot{
		Mode:         d.mode,
		Section:      d.section,
		SearchPlate:  d.searchPlate,
		Profile:      d.profile,
		ProfileError: d.profileErr,
		History:      []HistoryEntry{},
		Charts:       []ChartConfig{},
	}
	if d.profile != nil {
		snap.RiskTone = riskTone(d.profile.Stats.RiskLevel)
		if h := d.profile.History(); h != nil {
			snap.History = h
		}
		snap.Charts = sectionCharts(d.profile, d.section)
	}
	d.mu.Unlock()

	snap.Register = d.registration.State()
	snap.Violation = d.violations.State()
	return snap
}

func (d *Dashboard) Close() {
	d.violations.Close()
}

func riskTone(level string) string {
	switch strings.ToLower(level) {
	case "high", "critical":
		return "danger"
	case "moderate", "medium":
		return "warning"
	default:
		return "ok"
	}
}

func sectionCharts(p *FullProfile, section Section) []ChartConfig {
	penaltyTimeline := p.Charts.PenaltyTimeline
	if len(penaltyTimeline) == 0 {
		penaltyTimeline = p.Charts.Timeline
	}
	violationTypes := p.Charts.ViolationTypes
	if len(violationTypes) == 0 {
		violationTypes = p.Charts.Distribution
	}

	penalties := []ChartConfig{
		TimelineChart("timeline", "Violation Timeline", "Violations per month", penaltyTimeline),
		DistributionChart("distribution", "Violation Type Distribution", violationTypes),
		ActiveExpiredChart(&p.Charts.PointsSplit),
	}
	rewards := []ChartConfig{
		TimelineChart("reward_timeline", "Reward Timeline", "Rewards per month", p.Charts.RewardTimeline),
		DistributionChart("reward_types", "Reward Types", p.Charts.RewardTypes),
	}

	switch section {
	case SectionPenalties:
		return penalties
	case SectionRewards:
		return rewards
	default:
		return append(penalties, rewards...)
	}
}
