package service

// ChartDataset 对应前端图表组件的一个数据集。
type ChartDataset struct {
	Label           string   `json:"label"`
	Data            []int    `json:"data"`
	BackgroundColor []string `json:"backgroundColor"`
	BorderColor     []string `json:"borderColor"`
	BorderWidth     int      `json:"borderWidth"`
}

// ChartData 是饼图与柱状图共用的数据，标签顺序固定。
type ChartData struct {
	Title    string         `json:"title"`
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

const chartTitle = "Files Breakdown"

var (
	chartLabels     = []string{"Video", "Audio", "Document", "Image"}
	chartBackground = []string{
		"rgba(255, 99, 132, 0.2)",
		"rgba(54, 162, 235, 0.2)",
		"rgba(255, 206, 86, 0.2)",
		"rgba(75, 192, 192, 0.2)",
	}
	chartBorder = []string{
		"rgba(255, 99, 132, 1)",
		"rgba(54, 162, 235, 1)",
		"rgba(255, 206, 86, 1)",
		"rgba(75, 192, 192, 1)",
	}
)

// BuildChartData 把统计结果转换为图表数据。
func BuildChartData(b Breakdown) ChartData {
	return ChartData{
		Title:  chartTitle,
		Labels: append([]string(nil), chartLabels...),
		Datasets: []ChartDataset{{
			Label:           chartTitle,
			Data:            []int{b.Video, b.Audio, b.Document, b.Image},
			BackgroundColor: append([]string(nil), chartBackground...),
			BorderColor:     append([]string(nil), chartBorder...),
			BorderWidth:     1,
		}},
	}
}
