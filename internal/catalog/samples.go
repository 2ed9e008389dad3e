package catalog

import "github.com/pbaille/cookbook/internal/domain"

// SampleRecipes are saved into an empty catalog so first-time users have something to browse
func SampleRecipes() []domain.Recipe {
	return []domain.Recipe{
		{
			Name:        "番茄炒蛋",
			Description: "家常快手菜，营养美味",
			Ingredients: domain.Ingredients{
				{Name: "番茄", Amount: "2个"},
				{Name: "鸡蛋", Amount: "3个"},
				{Name: "盐", Amount: "适量"},
			},
			Steps: domain.Steps{
				{Text: "番茄洗净切块"},
				{Text: "鸡蛋打散加少许盐"},
				{Text: "热锅下油炒鸡蛋"},
				{Text: "加入番茄翻炒"},
			},
			PrepTime:   10,
			CookTime:   5,
			Difficulty: domain.DifficultyBeginner,
			Tags: domain.Tags{
				Cuisine:    []string{"中餐"},
				Type:       []string{"主菜类"},
				Ingredient: []string{"番茄", "鸡蛋"},
				Custom:     []string{"快手菜"},
			},
		},
		{
			Name:        "红烧肉",
			Description: "肥而不腻，入口即化",
			Ingredients: domain.Ingredients{
				{Name: "五花肉", Amount: "500g"},
				{Name: "冰糖", Amount: "30g"},
				{Name: "生抽", Amount: "2勺"},
			},
			Steps: domain.Steps{
				{Text: "五花肉切块焯水"},
				{Text: "冰糖炒糖色"},
				{Text: "加入五花肉翻炒"},
				{Text: "小火炖煮1小时"},
			},
			PrepTime:   20,
			CookTime:   60,
			Difficulty: domain.DifficultyHomeCook,
			Tags: domain.Tags{
				Cuisine:    []string{"中餐"},
				Type:       []string{"主菜类"},
				Ingredient: []string{"猪肉"},
				Custom:     []string{"下饭菜"},
			},
		},
	}
}
