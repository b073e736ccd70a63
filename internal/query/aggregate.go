package query

import (
	"cmp"
	"math"
	"slices"

	"go-stock-tracker/internal/model"
)

// Overview holds whole-catalog KPIs over active products.
type Overview struct {
	TotalProducts   int     `json:"totalProducts"`
	TotalValue      float64 `json:"totalValue"`
	TotalCost       float64 `json:"totalCost"`
	AvgPrice        float64 `json:"avgPrice"`
	AvgCost         float64 `json:"avgCost"`
	TotalQuantity   int     `json:"totalQuantity"`
	LowStockCount   int     `json:"lowStockCount"`
	OutOfStockCount int     `json:"outOfStockCount"`
}

func ComputeOverview(products []model.Product) Overview {
	var value, cost, prices, costs sum
	o := Overview{}
	for _, p := range Active(products) {
		o.TotalProducts++
		value.Add(p.TotalValue)
		cost.AddProduct(p.Quantity, p.CostPrice)
		prices.Add(p.SalePrice)
		costs.Add(p.CostPrice)
		o.TotalQuantity += p.Quantity
		switch p.StockStatus {
		case model.StockLow:
			o.LowStockCount++
		case model.StockOut:
			o.OutOfStockCount++
		}
	}
	o.TotalValue = Round2(value.Float())
	o.TotalCost = Round2(cost.Float())
	o.AvgPrice = Average(prices.Float(), o.TotalProducts)
	o.AvgCost = Average(costs.Float(), o.TotalProducts)
	return o
}

// KPIs are the dashboard headline numbers derived from an Overview.
type KPIs struct {
	TotalProducts       int     `json:"totalProducts"`
	TotalInventoryValue float64 `json:"totalInventoryValue"`
	PotentialRevenue    float64 `json:"potentialRevenue"`
	PotentialProfit     float64 `json:"potentialProfit"`
	ProfitMargin        float64 `json:"profitMargin"`
	AvgProductPrice     float64 `json:"avgProductPrice"`
	TotalQuantity       int     `json:"totalQuantity"`
}

func (o Overview) KPIs() KPIs {
	profit := Round2(o.TotalValue - o.TotalCost)
	margin := 0.0
	if o.TotalCost > 0 {
		margin = Percent(profit, o.TotalValue)
	}
	return KPIs{
		TotalProducts:       o.TotalProducts,
		TotalInventoryValue: o.TotalValue,
		PotentialRevenue:    o.TotalValue,
		PotentialProfit:     profit,
		ProfitMargin:        margin,
		AvgProductPrice:     o.AvgPrice,
		TotalQuantity:       o.TotalQuantity,
	}
}

type PriceSpan struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CategoryStat is one row of the category rollup.
type CategoryStat struct {
	Category        model.Category `json:"category"`
	TotalProducts   int            `json:"totalProducts"`
	TotalValue      float64        `json:"totalValue"`
	TotalQuantity   int            `json:"totalQuantity"`
	AvgPrice        float64        `json:"avgPrice"`
	AvgCost         float64        `json:"avgCost"`
	PriceRange      PriceSpan      `json:"priceRange"`
	LowStockCount   int            `json:"lowStockCount"`
	OutOfStockCount int            `json:"outOfStockCount"`
	StockHealth     float64        `json:"stockHealth"`
	SupplierCount   int            `json:"supplierCount"`
	AvgProfitMargin float64        `json:"avgProfitMargin"`
}

type group struct {
	count, low, out, inStock, quantity int
	value, prices, costs               sum
	minPrice, maxPrice                 float64
	suppliers, categories              []string
}

func (g *group) add(p *model.Product) {
	if g.count == 0 {
		g.minPrice, g.maxPrice = p.SalePrice, p.SalePrice
	}
	g.count++
	g.quantity += p.Quantity
	g.value.Add(p.TotalValue)
	g.prices.Add(p.SalePrice)
	g.costs.Add(p.CostPrice)
	g.minPrice = math.Min(g.minPrice, p.SalePrice)
	g.maxPrice = math.Max(g.maxPrice, p.SalePrice)
	switch p.StockStatus {
	case model.StockLow:
		g.low++
	case model.StockOut:
		g.out++
	case model.StockIn:
		g.inStock++
	}
	if p.Supplier != "" && !slices.Contains(g.suppliers, p.Supplier) {
		g.suppliers = append(g.suppliers, p.Supplier)
	}
	if c := string(p.Category); !slices.Contains(g.categories, c) {
		g.categories = append(g.categories, c)
	}
}

// avgMargin is (avgPrice-avgCost)/avgPrice over the unrounded averages.
func (g *group) avgMargin() float64 {
	if g.count == 0 {
		return 0
	}
	n := float64(g.count)
	avgPrice, avgCost := g.prices.Float()/n, g.costs.Float()/n
	return Percent(avgPrice-avgCost, avgPrice)
}

// groupBy buckets active products by key, preserving first-seen key order.
func groupBy(products []model.Product, key func(*model.Product) (string, bool)) ([]string, map[string]*group) {
	var order []string
	groups := map[string]*group{}
	for _, p := range Active(products) {
		k, ok := key(&p)
		if !ok {
			continue
		}
		g, seen := groups[k]
		if !seen {
			g = &group{}
			groups[k] = g
			order = append(order, k)
		}
		g.add(&p)
	}
	return order, groups
}

// CategoryStats rolls up active products per category, highest value first.
func CategoryStats(products []model.Product) []CategoryStat {
	order, groups := groupBy(products, func(p *model.Product) (string, bool) {
		return string(p.Category), true
	})
	stats := make([]CategoryStat, 0, len(order))
	for _, k := range order {
		g := groups[k]
		stats = append(stats, CategoryStat{
			Category:        model.Category(k),
			TotalProducts:   g.count,
			TotalValue:      Round2(g.value.Float()),
			TotalQuantity:   g.quantity,
			AvgPrice:        Average(g.prices.Float(), g.count),
			AvgCost:         Average(g.costs.Float(), g.count),
			PriceRange:      PriceSpan{Min: g.minPrice, Max: g.maxPrice},
			LowStockCount:   g.low,
			OutOfStockCount: g.out,
			StockHealth:     Percent(float64(g.count-g.low-g.out), float64(g.count)),
			SupplierCount:   len(g.suppliers),
			AvgProfitMargin: g.avgMargin(),
		})
	}
	slices.SortStableFunc(stats, func(a, b CategoryStat) int {
		return cmp.Compare(b.TotalValue, a.TotalValue)
	})
	return stats
}

type CategorySummary struct {
	TotalCategories        int     `json:"totalCategories"`
	TotalProducts          int     `json:"totalProducts"`
	TotalValue             float64 `json:"totalValue"`
	AvgProductsPerCategory int     `json:"avgProductsPerCategory"`
}

type ValueShare struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

type CountShare struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type CategoryAnalysis struct {
	Categories []CategoryStat   `json:"categories"`
	Summary    CategorySummary  `json:"summary"`
	ChartData  CategoryChartSet `json:"chartData"`
}

type CategoryChartSet struct {
	ValueDistribution   []ValueShare `json:"valueDistribution"`
	ProductDistribution []CountShare `json:"productDistribution"`
}

func AnalyzeCategories(products []model.Product) CategoryAnalysis {
	stats := CategoryStats(products)
	a := CategoryAnalysis{
		Categories: stats,
		ChartData: CategoryChartSet{
			ValueDistribution:   make([]ValueShare, 0, len(stats)),
			ProductDistribution: make([]CountShare, 0, len(stats)),
		},
	}
	var total sum
	for _, s := range stats {
		total.Add(s.TotalValue)
		a.Summary.TotalProducts += s.TotalProducts
	}
	a.Summary.TotalCategories = len(stats)
	a.Summary.TotalValue = Round2(total.Float())
	a.Summary.AvgProductsPerCategory = roundedRatio(a.Summary.TotalProducts, len(stats))

	for _, s := range stats {
		a.ChartData.ValueDistribution = append(a.ChartData.ValueDistribution, ValueShare{
			Name:       string(s.Category),
			Value:      s.TotalValue,
			Percentage: Percent(s.TotalValue, a.Summary.TotalValue),
		})
		a.ChartData.ProductDistribution = append(a.ChartData.ProductDistribution, CountShare{
			Name:  string(s.Category),
			Count: s.TotalProducts,
		})
	}
	return a
}

// SupplierStat is one row of the supplier rollup.
type SupplierStat struct {
	Supplier        string   `json:"supplier"`
	TotalProducts   int      `json:"totalProducts"`
	TotalValue      float64  `json:"totalValue"`
	TotalQuantity   int      `json:"totalQuantity"`
	AvgPrice        float64  `json:"avgPrice"`
	AvgCost         float64  `json:"avgCost"`
	Categories      []string `json:"categories"`
	CategoryCount   int      `json:"categoryCount"`
	StockHealth     float64  `json:"stockHealth"`
	AvgProfitMargin float64  `json:"avgProfitMargin"`
}

// SupplierStats rolls up active products with a non-empty supplier,
// highest value first. Stock health here is the in-stock share.
func SupplierStats(products []model.Product) []SupplierStat {
	order, groups := groupBy(products, func(p *model.Product) (string, bool) {
		return p.Supplier, p.Supplier != ""
	})
	stats := make([]SupplierStat, 0, len(order))
	for _, k := range order {
		g := groups[k]
		stats = append(stats, SupplierStat{
			Supplier:        k,
			TotalProducts:   g.count,
			TotalValue:      Round2(g.value.Float()),
			TotalQuantity:   g.quantity,
			AvgPrice:        Average(g.prices.Float(), g.count),
			AvgCost:         Average(g.costs.Float(), g.count),
			Categories:      g.categories,
			CategoryCount:   len(g.categories),
			StockHealth:     Percent(float64(g.inStock), float64(g.count)),
			AvgProfitMargin: g.avgMargin(),
		})
	}
	slices.SortStableFunc(stats, func(a, b SupplierStat) int {
		return cmp.Compare(b.TotalValue, a.TotalValue)
	})
	return stats
}

type SupplierSummary struct {
	TotalSuppliers         int     `json:"totalSuppliers"`
	TotalValue             float64 `json:"totalValue"`
	AvgProductsPerSupplier int     `json:"avgProductsPerSupplier"`
}

type SupplierRankings struct {
	ByValue        []SupplierStat `json:"byValue"`
	ByProductCount []SupplierStat `json:"byProductCount"`
	ByProfitMargin []SupplierStat `json:"byProfitMargin"`
	ByStockHealth  []SupplierStat `json:"byStockHealth"`
}

type SupplierAnalysis struct {
	Suppliers []SupplierStat   `json:"suppliers"`
	Summary   SupplierSummary  `json:"summary"`
	Rankings  SupplierRankings `json:"rankings"`
}

const rankingSize = 5

func AnalyzeSuppliers(products []model.Product) SupplierAnalysis {
	stats := SupplierStats(products)
	a := SupplierAnalysis{Suppliers: stats}

	var total sum
	count := 0
	for _, s := range stats {
		total.Add(s.TotalValue)
		count += s.TotalProducts
	}
	a.Summary = SupplierSummary{
		TotalSuppliers:         len(stats),
		TotalValue:             Round2(total.Float()),
		AvgProductsPerSupplier: roundedRatio(count, len(stats)),
	}
	a.Rankings = SupplierRankings{
		ByValue:        topSuppliers(stats, func(s SupplierStat) float64 { return s.TotalValue }),
		ByProductCount: topSuppliers(stats, func(s SupplierStat) float64 { return float64(s.TotalProducts) }),
		ByProfitMargin: topSuppliers(stats, func(s SupplierStat) float64 { return s.AvgProfitMargin }),
		ByStockHealth:  topSuppliers(stats, func(s SupplierStat) float64 { return s.StockHealth }),
	}
	return a
}

func topSuppliers(stats []SupplierStat, key func(SupplierStat) float64) []SupplierStat {
	ranked := slices.Clone(stats)
	slices.SortStableFunc(ranked, func(a, b SupplierStat) int {
		return cmp.Compare(key(b), key(a))
	})
	if len(ranked) > rankingSize {
		ranked = ranked[:rankingSize]
	}
	return ranked
}

// PriceBucket covers salePrice in [Min, Max); Max is nil for the open-ended bucket.
type PriceBucket struct {
	Label       string   `json:"label"`
	Min         float64  `json:"min"`
	Max         *float64 `json:"max"`
	Count       int      `json:"count"`
	TotalValue  float64  `json:"totalValue"`
	AvgQuantity float64  `json:"avgQuantity"`
}

var bucketBounds = []float64{0, 50, 100, 250, 500, 1000}

var bucketLabels = []string{"0-50", "50-100", "100-250", "250-500", "500-1000", "1000+"}

func bucketIndex(price float64) int {
	for i := len(bucketBounds) - 1; i >= 0; i-- {
		if price >= bucketBounds[i] {
			return i
		}
	}
	return 0
}

// PriceDistribution partitions active products into fixed price buckets,
// omitting empty ones.
func PriceDistribution(products []model.Product) []PriceBucket {
	type acc struct {
		count, quantity int
		value           sum
	}
	accs := make([]acc, len(bucketBounds))
	for _, p := range Active(products) {
		a := &accs[bucketIndex(p.SalePrice)]
		a.count++
		a.quantity += p.Quantity
		a.value.Add(p.TotalValue)
	}

	buckets := []PriceBucket{}
	for i, a := range accs {
		if a.count == 0 {
			continue
		}
		b := PriceBucket{
			Label:       bucketLabels[i],
			Min:         bucketBounds[i],
			Count:       a.count,
			TotalValue:  Round2(a.value.Float()),
			AvgQuantity: Average(float64(a.quantity), a.count),
		}
		if i+1 < len(bucketBounds) {
			upper := bucketBounds[i+1]
			b.Max = &upper
		}
		buckets = append(buckets, b)
	}
	return buckets
}

type PriceRange struct {
	Count        int           `json:"count"`
	Min          float64       `json:"min"`
	Max          float64       `json:"max"`
	Avg          float64       `json:"avg"`
	Distribution []PriceBucket `json:"distribution"`
}

func ComputePriceRange(products []model.Product) PriceRange {
	active := Active(products)
	r := PriceRange{Count: len(active), Distribution: PriceDistribution(active)}
	var prices sum
	for i, p := range active {
		if i == 0 {
			r.Min, r.Max = p.SalePrice, p.SalePrice
		}
		r.Min = math.Min(r.Min, p.SalePrice)
		r.Max = math.Max(r.Max, p.SalePrice)
		prices.Add(p.SalePrice)
	}
	r.Avg = Average(prices.Float(), len(active))
	return r
}

type StatusShare struct {
	Status model.StockStatus `json:"status"`
	Count  int               `json:"count"`
	Value  float64           `json:"value"`
}

// StockDistribution counts active products per stock status, by severity.
func StockDistribution(products []model.Product) []StatusShare {
	shares := []StatusShare{
		{Status: model.StockOut}, {Status: model.StockLow}, {Status: model.StockIn},
	}
	values := make([]sum, len(shares))
	for _, p := range Active(products) {
		i := p.StockStatus.Severity()
		if i >= len(shares) {
			continue
		}
		shares[i].Count++
		values[i].Add(p.TotalValue)
	}
	for i := range shares {
		shares[i].Value = Round2(values[i].Float())
	}
	return shares
}

// TopByValue returns the n most valuable active products.
func TopByValue(products []model.Product, n int) []model.Product {
	ranked := Active(products)
	slices.SortStableFunc(ranked, func(a, b model.Product) int {
		return cmp.Compare(b.TotalValue, a.TotalValue)
	})
	return head(ranked, n)
}

// LowStock returns active low and out-of-stock products, lowest quantity
// first. n <= 0 means no limit.
func LowStock(products []model.Product, n int) []model.Product {
	out := []model.Product{}
	for _, p := range Active(products) {
		if p.StockStatus == model.StockLow || p.StockStatus == model.StockOut {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Product) int {
		return cmp.Compare(a.Quantity, b.Quantity)
	})
	return head(out, n)
}

// Recent returns the n newest active products.
func Recent(products []model.Product, n int) []model.Product {
	ranked := Active(products)
	Sort{Field: "createdAt", Order: OrderDesc}.Apply(ranked)
	return head(ranked, n)
}

type CategoryCount struct {
	Category   model.Category `json:"category"`
	Count      int            `json:"count"`
	TotalValue float64        `json:"totalValue"`
}

// CategoryCounts lists every known category with its active product count.
func CategoryCounts(products []model.Product) []CategoryCount {
	idx := map[model.Category]int{}
	out := make([]CategoryCount, 0, len(model.Categories))
	values := make([]sum, len(model.Categories))
	for i, c := range model.Categories {
		idx[c] = i
		out = append(out, CategoryCount{Category: c})
	}
	for _, p := range Active(products) {
		i, ok := idx[p.Category]
		if !ok {
			continue
		}
		out[i].Count++
		values[i].Add(p.TotalValue)
	}
	for i := range out {
		out[i].TotalValue = Round2(values[i].Float())
	}
	return out
}

// CategoryDistribution is CategoryCounts without empty categories, most
// populated first.
func CategoryDistribution(products []model.Product) []CategoryCount {
	out := []CategoryCount{}
	for _, c := range CategoryCounts(products) {
		if c.Count > 0 {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b CategoryCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out
}

type BrandCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Brands lists distinct non-empty suppliers, most products first then by name.
func Brands(products []model.Product) []BrandCount {
	order, groups := groupBy(products, func(p *model.Product) (string, bool) {
		return p.Supplier, p.Supplier != ""
	})
	out := make([]BrandCount, 0, len(order))
	for _, k := range order {
		out = append(out, BrandCount{Name: k, Count: groups[k].count})
	}
	slices.SortFunc(out, func(a, b BrandCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return compareFold(a.Name, b.Name)
	})
	return out
}

func head(products []model.Product, n int) []model.Product {
	if n > 0 && len(products) > n {
		return products[:n]
	}
	return products
}

func roundedRatio(a, b int) int {
	if b == 0 {
		return 0
	}
	return int(math.Round(float64(a) / float64(b)))
}
