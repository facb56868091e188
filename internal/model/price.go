// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencySymbol prefixes every formatted price.
const CurrencySymbol = "₽"

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice renders a whole-ruble amount with space-separated thousands,
// e.g. 150000 -> "₽150 000".
func FormatPrice(v float64) string {
	grouped := pricePrinter.Sprintf("%d", int64(math.Round(v)))
	return CurrencySymbol + strings.ReplaceAll(grouped, ",", " ")
}
