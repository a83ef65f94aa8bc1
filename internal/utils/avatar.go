package utils

import (
	"math/rand"
)

// 注册时随机分配的头像渐变色
var avatarColors = []string{
	"from-purple-500 to-indigo-500",
	"from-orange-500 to-red-500",
	"from-green-500 to-teal-500",
	"from-blue-500 to-cyan-500",
}

// RandomAvatarColor 返回一个随机头像渐变色
func RandomAvatarColor() string {
	return avatarColors[rand.Intn(len(avatarColors))]
}
