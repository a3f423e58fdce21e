package main

import "strings"

type ViolationType struct {
	Code     string `json:"code"`
	Label    string `json:"label"`
	Severity string `json:"severity"`
}

var violationCatalog = []ViolationType{
	{Code: "RED_LIGHT", Label: "Red Light Violation", Severity: "Medium"},
	{Code: "WHITE_LINE", Label: "Crossing White Line", Severity: "Medium"},
	{Code: "WRONG_OVERTAKE", Label: "Wrong Side Overtake", Severity: "High"},
	{Code: "PEDESTRIAN", Label: "Pedestrian Crossing", Severity: "High"},
	{Code: "MOTO_OVERLOAD", Label: "Motorcycle Overload", Severity: "Medium"},
	{Code: "NO_HELMET", Label: "No Helmet", Severity: "High"},
	{Code: "3WHEEL_OVERLOAD", Label: "Three-Wheel Overload", Severity: "Medium"},
	{Code: "NO_SIGNAL", Label: "No Turn Signal", Severity: "Low"},
	{Code: "RAILWAY", Label: "Railway Violation", Severity: "High"},
	{Code: "OBSTRUCTION", Label: "Traffic Obstruction", Severity: "Low"},
}

var vehicleTypes = []string{"Car", "Bike", "Tuk"}

const defaultVehicleType = "Car"

func lookupViolationType(code string) (ViolationType, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, v := range violationCatalog {
		if v.Code == code {
			return v, true
		}
	}
	return ViolationType{}, false
}

func isVehicleType(v string) bool {
	for _, t := range vehicleTypes {
		if t == v {
			return true
		}
	}
	return false
}
