package partyhistory

import "fmt"

const tutorSystemInstruction = "你是一位博学、客观且充满热情的中国共产党党史专家。请用简洁、生动且准确的中文回答用户关于党史的问题。如果涉及具体数据或日期，请尽量精确。保持尊重的语调。"

func questionsPrompt(n int) string {
	return fmt.Sprintf("生成%d道关于中国共产党党史的单选题。题目难度适中，覆盖不同历史时期（如建党、长征、抗日战争、改革开放等）。\n"+
		"每道题提供%d个选项，correctOptionIndex 为正确选项的下标（从0开始），并附简短解析。\n"+
		"返回纯JSON格式。", n, MaxOptions)
}

func timelinePrompt(n int) string {
	return fmt.Sprintf("生成%d个中国共产党历史上的关键里程碑事件，按时间顺序排列。包含从建党到新时代的代表性事件。确保年份准确。", n)
}
