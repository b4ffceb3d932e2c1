package algorithms

// defaultLexicon базовый словарь наименований МТР для сегментации китайского текста.
// Категорийные ключевые слова добавляются к нему при сборке движка.
var defaultLexicon = []string{
	// Трубопроводная арматура
	"阀门", "闸阀", "截止阀", "球阀", "蝶阀", "止回阀", "单向阀", "安全阀", "减压阀",
	"调节阀", "电磁阀", "针阀", "旋塞阀", "隔膜阀", "疏水器", "疏水阀", "阀",
	// Фланцы и фитинги
	"法兰", "板式", "平焊", "对焊", "带颈", "承插", "松套", "盲板", "法兰盖",
	"弯头", "三通", "四通", "大小头", "异径管", "管帽", "管箍", "活接", "接头",
	"管件", "短节", "补偿器", "过滤器", "视镜",
	// Трубы
	"钢管", "无缝钢管", "焊管", "螺旋管", "镀锌管", "软管", "胶管", "金属软管", "管",
	// Крепёж и уплотнения
	"螺栓", "螺母", "螺柱", "双头", "六角", "内六角", "垫片", "垫圈", "平垫",
	"弹垫", "缠绕垫", "缠绕", "石墨", "密封", "密封圈", "填料",
	// Механика
	"轴承", "深沟球", "滚子", "轴套", "齿轮", "皮带", "链条", "联轴器",
	// Насосы, двигатели
	"泵", "离心泵", "水泵", "油泵", "计量泵", "隔膜泵", "电机", "电动机", "减速机", "风机",
	// Электрика
	"电缆", "电线", "开关", "接触器", "断路器", "继电器", "变压器", "熔断器",
	"按钮", "指示灯", "插座", "端子", "桥架",
	// КИПиА
	"压力表", "温度计", "流量计", "液位计", "传感器", "变送器", "热电偶", "热电阻",
	"仪表", "控制器",
	// Инструмент и СИЗ
	"扳手", "钻头", "刀具", "锯片", "手套", "安全帽", "劳保", "工作服",
	// Способ привода и исполнение
	"手动", "电动", "气动", "液动", "螺纹", "焊接", "铸造", "锻造", "保温", "防爆",
}
